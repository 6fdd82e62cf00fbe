// Package cli is an interactive front end to a search session, used for
// trying searches and suggestions from a terminal.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/topicserve/internal/i18n"
	"github.com/bastiangx/topicserve/internal/utils"
	"github.com/bastiangx/topicserve/pkg/session"
	"github.com/bastiangx/topicserve/pkg/store"
	"github.com/bastiangx/topicserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/olekukonko/tablewriter"
)

const helpText = `commands:
  ?<prefix>              show suggestions (plain text works too)
  /pick <n>              search for suggestion n
  /search <topic>        search for a topic
  /read <n>              open article n
  /up <n>, /down <n>     rate article n (repeat to clear)
  /comment <n> <text>    comment on article n
  /comments <n>          list comments on article n
  /lang <en|ta|ml>       switch language
  /stats                 show streak and reader rank
  /help                  show this text`

// InputHandler reads commands from stdin and drives the session.
type InputHandler struct {
	session   *session.Controller
	store     *store.Store
	dropdown  *suggest.Dropdown
	tr        i18n.Translator
	out       io.Writer
	maxPrefix int
	author    string
	result    *session.Result
}

// NewInputHandler binds a handler to a session. st may be nil.
func NewInputHandler(ctrl *session.Controller, st *store.Store, out io.Writer, limit, maxPrefix int) *InputHandler {
	return &InputHandler{
		session:   ctrl,
		store:     st,
		dropdown:  suggest.NewDropdown(ctrl.Completer(), limit),
		tr:        i18n.New(i18n.English),
		out:       out,
		maxPrefix: maxPrefix,
		author:    "cli",
	}
}

// Start loops over input lines until the reader ends.
func (h *InputHandler) Start(ctx context.Context, in io.Reader) error {
	if h.store != nil {
		if lang, err := h.store.Language(ctx); err == nil {
			h.tr = i18n.New(lang)
		}
		if streak, err := h.store.TouchVisit(ctx, time.Now()); err == nil {
			log.Debugf("Daily streak: %d", streak)
		}
	}

	log.Print(fmt.Sprintf("TopicServe CLI: %s", h.tr.T(i18n.Title)))
	log.Print("type /search <topic>, then a prefix to see keyword suggestions (/help, Ctrl+C to exit):")

	reader := bufio.NewReader(in)
	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line != "" {
			h.handleInput(ctx, line)
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

func (h *InputHandler) handleInput(ctx context.Context, line string) {
	if strings.HasPrefix(line, "?") {
		h.showSuggestions(strings.TrimPrefix(line, "?"))
		return
	}
	if !strings.HasPrefix(line, "/") {
		h.showSuggestions(line)
		return
	}

	cmd, arg, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "search", "s":
		h.search(ctx, arg)
	case "pick", "p":
		n, ok := h.number(arg)
		if !ok {
			return
		}
		word, ok := h.dropdown.Choose(n - 1)
		if !ok {
			log.Errorf("No suggestion %d", n)
			return
		}
		h.search(ctx, word)
	case "read":
		h.read(ctx, arg)
	case "up", "down":
		h.feedback(ctx, arg, store.Vote(cmd))
	case "comment":
		h.comment(ctx, arg)
	case "comments":
		h.listComments(ctx, arg)
	case "lang":
		h.setLanguage(ctx, arg)
	case "stats":
		h.stats(ctx)
	case "help", "h":
		fmt.Fprintln(h.out, helpText)
	default:
		log.Errorf("Unknown command: /%s", cmd)
	}
}

func (h *InputHandler) showSuggestions(prefix string) {
	if utf8.RuneCountInString(prefix) > h.maxPrefix {
		log.Errorf("Prefix too long: %s", prefix)
		return
	}

	start := time.Now()
	suggestions := h.dropdown.Type(prefix)
	log.Debugf("Took [ %v ] for prefix '%s'", time.Since(start), prefix)

	if len(suggestions) == 0 {
		if h.session.Searching() {
			log.Warn(h.tr.T(i18n.Searching))
		}
		fmt.Fprintf(h.out, "%s: '%s'\n", h.tr.T(i18n.NoSuggestions), prefix)
		return
	}

	fmt.Fprintf(h.out, "%s (%d):\n", h.tr.T(i18n.Suggestions), len(suggestions))
	for _, s := range suggestions {
		clWord := fmt.Sprintf("\033[38;5;75m%s\033[0m", s.Word)
		fmt.Fprintf(h.out, "%2d. %-40s %s\n", s.Rank, clWord, s.Source)
	}
}

func (h *InputHandler) search(ctx context.Context, topic string) {
	h.dropdown.Type("")
	topic = utils.CleanTopic(topic)
	fmt.Fprintln(h.out, h.tr.T(i18n.FetchingNews))

	res, err := h.session.Search(ctx, topic)
	if err != nil {
		log.Errorf("%v", err)
		return
	}
	h.result = res
	h.renderArticles(res)
}

func (h *InputHandler) renderArticles(res *session.Result) {
	fmt.Fprintf(h.out, "%s: %s\n", h.tr.T(i18n.RankedArticles), res.Topic)

	table := tablewriter.NewWriter(h.out)
	table.Header("#", "Title", h.tr.T(i18n.Source), h.tr.T(i18n.Relevance))
	for i, a := range res.Articles {
		if err := table.Append(strconv.Itoa(i+1), utils.Truncate(a.Title, 60), a.Source, strconv.Itoa(a.RelevanceScore)); err != nil {
			log.Errorf("Rendering table: %v", err)
			return
		}
	}
	if err := table.Render(); err != nil {
		log.Errorf("Rendering table: %v", err)
	}

	fmt.Fprintf(h.out, "%s: %s\n", h.tr.T(i18n.Keywords), strings.Join(res.Keywords, ", "))
	log.Debugf("Search took %v", res.Elapsed)
}

func (h *InputHandler) number(arg string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 {
		log.Errorf("Expected a positive number, got '%s'", arg)
		return 0, false
	}
	return n, true
}

// article resolves a 1-based article number from the last search.
func (h *InputHandler) article(arg string) (string, bool) {
	if h.result == nil {
		log.Error(h.tr.T(i18n.NoArticles))
		return "", false
	}
	n, ok := h.number(arg)
	if !ok {
		return "", false
	}
	if n > len(h.result.Articles) {
		log.Errorf("No article %d", n)
		return "", false
	}
	return h.result.Articles[n-1].ID, true
}

func (h *InputHandler) needStore() bool {
	if h.store == nil {
		log.Error("Reader store is disabled")
		return false
	}
	return true
}

func (h *InputHandler) read(ctx context.Context, arg string) {
	id, ok := h.article(arg)
	if !ok || !h.needStore() {
		return
	}
	if _, err := h.store.MarkRead(ctx, id); err != nil {
		log.Errorf("%v", err)
		return
	}
	for _, a := range h.result.Articles {
		if a.ID == id {
			fmt.Fprintf(h.out, "%s\n%s\n%s\n", a.Title, a.Summary, a.URL)
		}
	}
}

func (h *InputHandler) feedback(ctx context.Context, arg string, v store.Vote) {
	id, ok := h.article(arg)
	if !ok || !h.needStore() {
		return
	}
	got, err := h.store.ToggleFeedback(ctx, id, v)
	if err != nil {
		log.Errorf("%v", err)
		return
	}
	if got == store.VoteNone {
		fmt.Fprintf(h.out, "feedback cleared for %s\n", id)
		return
	}
	fmt.Fprintf(h.out, "feedback %s for %s\n", got, id)
}

func (h *InputHandler) comment(ctx context.Context, arg string) {
	num, text, _ := strings.Cut(arg, " ")
	id, ok := h.article(num)
	if !ok || !h.needStore() {
		return
	}
	c, err := h.store.AddComment(ctx, id, h.author, text)
	if err != nil {
		log.Errorf("%v", err)
		return
	}
	fmt.Fprintf(h.out, "[%s] %s: %s\n", c.Timestamp, c.Author, c.Text)
}

func (h *InputHandler) listComments(ctx context.Context, arg string) {
	id, ok := h.article(arg)
	if !ok || !h.needStore() {
		return
	}
	comments, err := h.store.Comments(ctx, id)
	if err != nil {
		log.Errorf("%v", err)
		return
	}
	fmt.Fprintf(h.out, "%s (%d)\n", h.tr.T(i18n.Comments), len(comments))
	for _, c := range comments {
		fmt.Fprintf(h.out, "[%s] %s: %s\n", c.Timestamp, c.Author, c.Text)
	}
}

func (h *InputHandler) setLanguage(ctx context.Context, lang string) {
	if !i18n.Supported(lang) {
		log.Errorf("Unsupported language '%s', choose one of %s", lang, strings.Join(i18n.Languages(), ", "))
		return
	}
	h.tr = i18n.New(lang)
	if h.store != nil {
		if err := h.store.SetLanguage(ctx, h.tr.Lang()); err != nil {
			log.Warnf("Could not save language: %v", err)
		}
	}
	fmt.Fprintln(h.out, h.tr.T(i18n.Title))
}

func (h *InputHandler) stats(ctx context.Context) {
	var streak, reads int
	if h.store != nil {
		var err error
		if streak, err = h.store.Streak(ctx); err != nil {
			log.Errorf("%v", err)
			return
		}
		if reads, err = h.store.ReadCount(ctx); err != nil {
			log.Errorf("%v", err)
			return
		}
	}
	rank := store.ReaderRank(reads)
	counters := h.session.Stats()

	table := tablewriter.NewWriter(h.out)
	table.Header(h.tr.T(i18n.YourStats), "")
	rows := [][]string{
		{h.tr.T(i18n.DailyStreak), strconv.Itoa(streak)},
		{h.tr.T(i18n.ArticlesRead), utils.FormatWithCommas(reads)},
		{h.tr.T(i18n.ReaderRank), h.tr.T(i18n.Key(rank))},
		{h.tr.T(i18n.Keywords), utils.FormatWithCommas(counters["keywords"])},
		{"searches", strconv.Itoa(counters["searches"])},
	}
	if err := table.Bulk(rows); err != nil {
		log.Errorf("Rendering table: %v", err)
		return
	}
	if err := table.Render(); err != nil {
		log.Errorf("Rendering table: %v", err)
	}
}
