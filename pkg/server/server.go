package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/topicserve/internal/i18n"
	"github.com/bastiangx/topicserve/internal/utils"
	"github.com/bastiangx/topicserve/pkg/news"
	"github.com/bastiangx/topicserve/pkg/session"
	"github.com/bastiangx/topicserve/pkg/store"
	"github.com/bastiangx/topicserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Store is the part of *store.Store the reader actions use.
type Store interface {
	ToggleFeedback(ctx context.Context, articleID string, v store.Vote) (store.Vote, error)
	MarkRead(ctx context.Context, articleID string) (bool, error)
	ReadCount(ctx context.Context) (int, error)
	Streak(ctx context.Context) (int, error)
	AddComment(ctx context.Context, articleID, author, text string) (*store.Comment, error)
	Comments(ctx context.Context, articleID string) ([]store.Comment, error)
	SetLanguage(ctx context.Context, lang string) error
	Language(ctx context.Context) (string, error)
}

// Options bound request sizes. Zero values use the defaults.
type Options struct {
	MaxLimit  int
	MaxPrefix int
	MaxTopic  int
}

func (o *Options) defaults() {
	if o.MaxLimit < 1 {
		o.MaxLimit = 64
	}
	if o.MaxLimit > math.MaxUint16 {
		o.MaxLimit = math.MaxUint16
	}
	if o.MaxPrefix < 1 {
		o.MaxPrefix = 60
	}
	if o.MaxTopic < 1 {
		o.MaxTopic = 120
	}
}

// Server handles the msgpack IPC for one session.
type Server struct {
	session  *session.Controller
	store    Store
	opts     Options
	decoder  *msgpack.Decoder
	encoder  *msgpack.Encoder
	last     []suggest.Suggestion
	lang     string
	requests int
}

// NewServer creates a server using stdin/stdout. st may be nil, which
// disables the reader actions.
func NewServer(ctrl *session.Controller, st Store, opts Options) *Server {
	return NewServerWithIO(ctrl, st, opts, os.Stdin, os.Stdout)
}

// NewServerWithIO is NewServer with explicit streams.
func NewServerWithIO(ctrl *session.Controller, st Store, opts Options, r io.Reader, w io.Writer) *Server {
	opts.defaults()
	return &Server{
		session: ctrl,
		store:   st,
		opts:    opts,
		decoder: msgpack.NewDecoder(r),
		encoder: msgpack.NewEncoder(w),
		last:    []suggest.Suggestion{},
		lang:    i18n.English,
	}
}

// Start announces readiness and serves requests until the input ends or ctx
// is cancelled.
func (s *Server) Start(ctx context.Context) error {
	log.Debug("Starting Server.")

	if s.store != nil {
		if lang, err := s.store.Language(ctx); err == nil {
			s.lang = i18n.New(lang).Lang()
		} else {
			log.Warnf("Could not load language preference: %v", err)
		}
	}

	s.sendResponse(ReadyResponse{Status: "ready", Session: s.session.ID()})

	for {
		var req Request
		if err := s.decoder.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				log.Debug("Input closed, stopping server")
				return nil
			}
			log.Errorf("Decoding request: %v", err)
			s.sendError("", "Invalid msgpack request", 400)
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		s.handleRequest(ctx, req)
	}
}

func (s *Server) handleRequest(ctx context.Context, req Request) {
	s.requests++
	start := time.Now()

	action := req.Action
	if action == "" && req.Prefix != "" {
		action = ActionSuggest
	}

	switch action {
	case ActionSuggest:
		s.handleSuggest(req, start)
	case ActionSearch:
		s.handleSearch(ctx, req.ID, req.Topic, start)
	case ActionSelect:
		s.handleSelect(ctx, req, start)
	case ActionFeedback:
		s.handleFeedback(ctx, req, start)
	case ActionRead:
		s.handleRead(ctx, req, start)
	case ActionComment:
		s.handleComment(ctx, req, start)
	case ActionComments:
		s.handleComments(ctx, req, start)
	case ActionStats:
		s.handleStats(ctx, req, start)
	case ActionLang:
		s.handleLang(ctx, req, start)
	case ActionHealth:
		s.sendResponse(StatusResponse{ID: req.ID, Status: "ok", TimeTaken: since(start)})
	case "":
		s.sendError(req.ID, "Missing 'action' or 'p' parameter", 400)
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown action: %s", req.Action), 400)
	}
}

func since(start time.Time) int64 {
	return time.Since(start).Microseconds()
}

func (s *Server) handleSuggest(req Request, start time.Time) {
	if utf8.RuneCountInString(req.Prefix) > s.opts.MaxPrefix {
		s.sendError(req.ID, fmt.Sprintf("Prefix exceeds maximum length of %d characters", s.opts.MaxPrefix), 400)
		log.Debug("Prefix is too long in request")
		return
	}

	limit := req.Limit
	if limit > s.opts.MaxLimit {
		limit = s.opts.MaxLimit
	}

	var suggestions []suggest.Suggestion
	if limit < 1 {
		suggestions = s.session.Suggest(req.Prefix)
	} else {
		suggestions = s.session.SuggestN(req.Prefix, limit)
	}
	s.last = suggestions

	out := make([]Suggestion, len(suggestions))
	for i, sg := range suggestions {
		out[i] = Suggestion{Word: sg.Word, Rank: uint16(sg.Rank), Source: string(sg.Source)}
	}
	s.sendResponse(SuggestResponse{
		ID:          req.ID,
		Suggestions: out,
		Count:       len(out),
		TimeTaken:   since(start),
	})
}

func (s *Server) handleSearch(ctx context.Context, id, topic string, start time.Time) {
	topic = utils.CleanTopic(topic)
	if topic != "" && !utils.IsValidTopic(topic, s.opts.MaxTopic) {
		s.sendError(id, fmt.Sprintf("Invalid topic: %q", topic), 400)
		return
	}

	res, err := s.session.Search(ctx, topic)
	if err != nil {
		log.Errorf("Search failed: %v", err)
		s.sendError(id, err.Error(), searchErrorCode(err))
		return
	}
	s.last = []suggest.Suggestion{}

	s.sendResponse(SearchResponse{
		ID:        id,
		Topic:     res.Topic,
		Articles:  res.Articles,
		Keywords:  res.Keywords,
		Graph:     res.Graph,
		Count:     len(res.Articles),
		TimeTaken: since(start),
	})
}

func searchErrorCode(err error) int {
	switch {
	case errors.Is(err, session.ErrEmptyTopic):
		return 400
	case errors.Is(err, news.ErrNoArticles):
		return 404
	case errors.Is(err, session.ErrSearchInProgress):
		return 409
	case errors.Is(err, news.ErrFetch), errors.Is(err, news.ErrAnalyze):
		return 502
	case errors.Is(err, context.DeadlineExceeded):
		return 504
	default:
		return 500
	}
}

// handleSelect searches for the suggestion ranked req.Index in the last list.
func (s *Server) handleSelect(ctx context.Context, req Request, start time.Time) {
	if req.Index < 1 || req.Index > len(s.last) {
		s.sendError(req.ID, fmt.Sprintf("No suggestion with rank %d", req.Index), 400)
		return
	}
	s.handleSearch(ctx, req.ID, s.last[req.Index-1].Word, start)
}

func (s *Server) requireStore(id string) bool {
	if s.store == nil {
		s.sendError(id, "Reader store is disabled", 503)
		return false
	}
	return true
}

func storeErrorCode(err error) int {
	if errors.Is(err, store.ErrEmptyArticle) || errors.Is(err, store.ErrEmptyComment) || errors.Is(err, store.ErrInvalidVote) {
		return 400
	}
	return 500
}

func (s *Server) handleFeedback(ctx context.Context, req Request, start time.Time) {
	if !s.requireStore(req.ID) {
		return
	}
	vote, err := store.ParseVote(req.Vote)
	if err != nil {
		s.sendError(req.ID, err.Error(), 400)
		return
	}
	got, err := s.store.ToggleFeedback(ctx, req.Article, vote)
	if err != nil {
		s.sendError(req.ID, err.Error(), storeErrorCode(err))
		return
	}
	status := "set"
	if got == store.VoteNone {
		status = "cleared"
	}
	s.sendResponse(StatusResponse{ID: req.ID, Status: status, Vote: string(got), TimeTaken: since(start)})
}

func (s *Server) handleRead(ctx context.Context, req Request, start time.Time) {
	if !s.requireStore(req.ID) {
		return
	}
	first, err := s.store.MarkRead(ctx, req.Article)
	if err != nil {
		s.sendError(req.ID, err.Error(), storeErrorCode(err))
		return
	}
	s.sendResponse(StatusResponse{ID: req.ID, Status: "ok", FirstRead: first, TimeTaken: since(start)})
}

func (s *Server) handleComment(ctx context.Context, req Request, start time.Time) {
	if !s.requireStore(req.ID) {
		return
	}
	c, err := s.store.AddComment(ctx, req.Article, req.Author, req.Text)
	if err != nil {
		s.sendError(req.ID, err.Error(), storeErrorCode(err))
		return
	}
	s.sendResponse(StatusResponse{ID: req.ID, Status: "ok", Comment: c, TimeTaken: since(start)})
}

func (s *Server) handleComments(ctx context.Context, req Request, start time.Time) {
	if !s.requireStore(req.ID) {
		return
	}
	comments, err := s.store.Comments(ctx, req.Article)
	if err != nil {
		s.sendError(req.ID, err.Error(), storeErrorCode(err))
		return
	}
	s.sendResponse(StatusResponse{ID: req.ID, Status: "ok", Comments: comments, TimeTaken: since(start)})
}

func (s *Server) handleStats(ctx context.Context, req Request, start time.Time) {
	resp := StatsResponse{
		ID:       req.ID,
		Session:  s.session.ID(),
		Lang:     s.lang,
		Counters: s.session.Stats(),
	}
	resp.Counters["requests"] = s.requests

	if s.store != nil {
		var err error
		if resp.Streak, err = s.store.Streak(ctx); err != nil {
			s.sendError(req.ID, err.Error(), 500)
			return
		}
		if resp.Reads, err = s.store.ReadCount(ctx); err != nil {
			s.sendError(req.ID, err.Error(), 500)
			return
		}
	}
	rank := store.ReaderRank(resp.Reads)
	resp.Rank = string(rank)
	resp.RankTitle = i18n.T(s.lang, i18n.Key(rank))
	resp.TimeTaken = since(start)
	s.sendResponse(resp)
}

// handleLang reports the UI language, or switches it when req.Lang is set.
func (s *Server) handleLang(ctx context.Context, req Request, start time.Time) {
	if req.Lang == "" {
		s.sendResponse(StatusResponse{ID: req.ID, Status: "ok", Lang: s.lang, TimeTaken: since(start)})
		return
	}
	if !i18n.Supported(req.Lang) {
		s.sendError(req.ID, fmt.Sprintf("Unsupported language: %s", req.Lang), 400)
		return
	}
	lang := i18n.Normalize(req.Lang)
	if s.store != nil {
		if err := s.store.SetLanguage(ctx, lang); err != nil {
			s.sendError(req.ID, err.Error(), 500)
			return
		}
	}
	s.lang = lang
	s.sendResponse(StatusResponse{ID: req.ID, Status: "ok", Lang: lang, TimeTaken: since(start)})
}

func (s *Server) sendResponse(response any) {
	if err := s.encoder.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(ErrorResponse{ID: id, Error: message, Code: code})
}
