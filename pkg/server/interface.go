/*
Package server implements msgpack IPC for the topic search session.

The server reads a stream of msgpack requests from stdin and writes one
msgpack response per request to stdout. Requests are handled one at a time;
every response carries the time the handler took in microseconds.

# IPC

Each request has an ID and an action. An empty action with a prefix is a
suggestion request:

	{"id": "req_001", "p": "cli", "l": 5}

The server responds with the keyword suggestions in rank order:

	{"id": "req_001", "s": [{"w": "climate", "r": 1, "src": "keyword"}], "c": 1, "t": 12}

A search runs the AI lookup, refills the keyword index and returns the ranked
articles, keywords and topic graph:

	{"id": "req_002", "action": "search", "topic": "Climate policy"}

select searches for the i-th entry of the last suggestion list. The reader
actions feedback, read, comment, comments, stats and lang read and write the
local store.

Failures are reported as

	{"id": "req_003", "e": "topic is empty", "c": 400}
*/
package server

import (
	"github.com/bastiangx/topicserve/pkg/news"
	"github.com/bastiangx/topicserve/pkg/store"
)

const (
	ActionSuggest  = "suggest"
	ActionSearch   = "search"
	ActionSelect   = "select"
	ActionFeedback = "feedback"
	ActionRead     = "read"
	ActionComment  = "comment"
	ActionComments = "comments"
	ActionStats    = "stats"
	ActionLang     = "lang"
	ActionHealth   = "health"
)

// Request is the single inbound message shape; which fields matter depends
// on Action.
type Request struct {
	ID      string `msgpack:"id"`
	Action  string `msgpack:"action,omitempty"`
	Prefix  string `msgpack:"p,omitempty"`
	Limit   int    `msgpack:"l,omitempty"`
	Topic   string `msgpack:"topic,omitempty"`
	Index   int    `msgpack:"i,omitempty"`
	Article string `msgpack:"article,omitempty"`
	Vote    string `msgpack:"vote,omitempty"`
	Author  string `msgpack:"author,omitempty"`
	Text    string `msgpack:"text,omitempty"`
	Lang    string `msgpack:"lang,omitempty"`
}

// Suggestion - minimal suggestion entry
type Suggestion struct {
	Word   string `msgpack:"w"`
	Rank   uint16 `msgpack:"r"`
	Source string `msgpack:"src"`
}

type SuggestResponse struct {
	ID          string       `msgpack:"id"`
	Suggestions []Suggestion `msgpack:"s"`
	Count       int          `msgpack:"c"`
	TimeTaken   int64        `msgpack:"t"`
}

type SearchResponse struct {
	ID        string         `msgpack:"id"`
	Topic     string         `msgpack:"topic"`
	Articles  []news.Article `msgpack:"articles"`
	Keywords  []string       `msgpack:"keywords"`
	Graph     news.GraphData `msgpack:"graph"`
	Count     int            `msgpack:"c"`
	TimeTaken int64          `msgpack:"t"`
}

// StatusResponse acknowledges the reader actions.
type StatusResponse struct {
	ID        string          `msgpack:"id"`
	Status    string          `msgpack:"status"`
	Vote      string          `msgpack:"vote,omitempty"`
	FirstRead bool            `msgpack:"first,omitempty"`
	Lang      string          `msgpack:"lang,omitempty"`
	Comment   *store.Comment  `msgpack:"comment,omitempty"`
	Comments  []store.Comment `msgpack:"comments,omitempty"`
	TimeTaken int64           `msgpack:"t"`
}

type StatsResponse struct {
	ID        string         `msgpack:"id"`
	Session   string         `msgpack:"session"`
	Streak    int            `msgpack:"streak"`
	Reads     int            `msgpack:"reads"`
	Rank      string         `msgpack:"rank"`
	RankTitle string         `msgpack:"rank_title"`
	Lang      string         `msgpack:"lang"`
	Counters  map[string]int `msgpack:"counters"`
	TimeTaken int64          `msgpack:"t"`
}

// ReadyResponse is written once before the first request is read.
type ReadyResponse struct {
	Status  string `msgpack:"status"`
	Session string `msgpack:"session"`
}

// ErrorResponse holds basic error information
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
