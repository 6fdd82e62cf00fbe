/*
Package store persists the reader's local state in SQLite: searched topics,
article feedback, read articles, the daily visit streak, comments and UI
preferences.

The schema is embedded and applied on every open, so a fresh file and an
existing one go through the same path.
*/
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const (
	DefaultPath     = "topicserve.db"
	DefaultLanguage = "en"
	dayLayout       = "2006-01-02"
)

var (
	ErrEmptyArticle = errors.New("article id is empty")
	ErrEmptyComment = errors.New("comment text is empty")
	ErrInvalidVote  = errors.New("vote must be up or down")
)

// Config mirrors the connection pool knobs of database/sql.
type Config struct {
	Dsn          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  string
}

// OpenDB opens the sqlite file at cfg.Dsn, creating its directory, and runs
// every schema script.
func OpenDB(cfg Config, schemas ...string) (*sql.DB, error) {
	dbDir := filepath.Dir(cfg.Dsn)
	if _, err := os.Stat(dbDir); os.IsNotExist(err) {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", cfg.Dsn)
	if err != nil {
		return nil, err
	}

	for _, schema := range schemas {
		if strings.TrimSpace(schema) == "" {
			continue
		}
		if _, err := db.Exec(schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute schema initialization SQL: %w", err)
		}
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	duration, err := time.ParseDuration(cfg.MaxIdleTime)
	if err != nil {
		db.Close()
		return nil, err
	}
	db.SetConnMaxIdleTime(duration)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Store wraps the reader database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	db, err := OpenDB(Config{
		Dsn:          path,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		MaxIdleTime:  "15m",
	}, schemaSQL)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	log.Debugf("Store opened at %s", path)
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordTopic bumps the search count of a topic and returns the new count.
func (s *Store) RecordTopic(ctx context.Context, topic string) (int, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return 0, nil
	}

	query := `
	INSERT INTO topics (topic, count, last_searched) VALUES (?, 1, ?)
	ON CONFLICT(topic) DO UPDATE SET count = count + 1, last_searched = excluded.last_searched;
	`
	if _, err := s.db.ExecContext(ctx, query, topic, s.now().UTC()); err != nil {
		return 0, fmt.Errorf("record topic: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT count FROM topics WHERE topic = ?`, topic).Scan(&count); err != nil {
		return 0, fmt.Errorf("record topic: %w", err)
	}
	return count, nil
}

// TopicCounts returns every recorded topic with its search count.
func (s *Store) TopicCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT topic, count FROM topics`)
	if err != nil {
		return nil, fmt.Errorf("topic counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var topic string
		var count int
		if err := rows.Scan(&topic, &count); err != nil {
			return nil, fmt.Errorf("topic counts: %w", err)
		}
		counts[topic] = count
	}
	return counts, rows.Err()
}

// Vote is a reader's feedback on an article. The zero value means none.
type Vote string

const (
	VoteNone Vote = ""
	VoteUp   Vote = "up"
	VoteDown Vote = "down"
)

// ParseVote accepts up, down and their thumbs aliases.
func ParseVote(s string) (Vote, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "+", "+1":
		return VoteUp, nil
	case "down", "-", "-1":
		return VoteDown, nil
	}
	return VoteNone, ErrInvalidVote
}

// ToggleFeedback sets the vote for an article. Repeating the current vote
// clears it. The resulting vote is returned.
func (s *Store) ToggleFeedback(ctx context.Context, articleID string, v Vote) (Vote, error) {
	if articleID == "" {
		return VoteNone, ErrEmptyArticle
	}
	if v != VoteUp && v != VoteDown {
		return VoteNone, ErrInvalidVote
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return VoteNone, err
	}
	defer tx.Rollback()

	current, err := feedbackOf(ctx, tx, articleID)
	if err != nil {
		return VoteNone, err
	}

	next := v
	if current == v {
		next = VoteNone
		_, err = tx.ExecContext(ctx, `DELETE FROM feedback WHERE article_id = ?`, articleID)
	} else {
		_, err = tx.ExecContext(ctx, `
		INSERT INTO feedback (article_id, vote) VALUES (?, ?)
		ON CONFLICT(article_id) DO UPDATE SET vote = excluded.vote;
		`, articleID, string(v))
	}
	if err != nil {
		return VoteNone, fmt.Errorf("toggle feedback: %w", err)
	}
	return next, tx.Commit()
}

// Feedback returns the stored vote for an article.
func (s *Store) Feedback(ctx context.Context, articleID string) (Vote, error) {
	return feedbackOf(ctx, s.db, articleID)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func feedbackOf(ctx context.Context, q queryer, articleID string) (Vote, error) {
	var vote string
	err := q.QueryRowContext(ctx, `SELECT vote FROM feedback WHERE article_id = ?`, articleID).Scan(&vote)
	if errors.Is(err, sql.ErrNoRows) {
		return VoteNone, nil
	}
	if err != nil {
		return VoteNone, fmt.Errorf("feedback: %w", err)
	}
	return Vote(vote), nil
}

// MarkRead records an article as read. It reports whether this was the
// first time, so the read count only grows once per article.
func (s *Store) MarkRead(ctx context.Context, articleID string) (bool, error) {
	if articleID == "" {
		return false, ErrEmptyArticle
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO reads (article_id, read_at) VALUES (?, ?)`,
		articleID, s.now().UTC())
	if err != nil {
		return false, fmt.Errorf("mark read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) ReadCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reads`).Scan(&n); err != nil {
		return 0, fmt.Errorf("read count: %w", err)
	}
	return n, nil
}

// TouchVisit registers a visit on day and returns the daily streak. A second
// visit on the same day keeps the streak, a visit on the following day
// extends it, and anything else starts over at 1.
func (s *Store) TouchVisit(ctx context.Context, day time.Time) (int, error) {
	today := day.Format(dayLayout)
	yesterday := day.AddDate(0, 0, -1).Format(dayLayout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var last string
	var streak int
	err = tx.QueryRowContext(ctx, `SELECT last_day, streak FROM visits WHERE id = 1`).Scan(&last, &streak)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("touch visit: %w", err)
	}

	switch last {
	case today:
		return streak, nil
	case yesterday:
		streak++
	default:
		streak = 1
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO visits (id, last_day, streak) VALUES (1, ?, ?)
	ON CONFLICT(id) DO UPDATE SET last_day = excluded.last_day, streak = excluded.streak;
	`, today, streak)
	if err != nil {
		return 0, fmt.Errorf("touch visit: %w", err)
	}
	return streak, tx.Commit()
}

// Streak returns the stored streak without registering a visit.
func (s *Store) Streak(ctx context.Context) (int, error) {
	var streak int
	err := s.db.QueryRowContext(ctx, `SELECT streak FROM visits WHERE id = 1`).Scan(&streak)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("streak: %w", err)
	}
	return streak, nil
}

// Comment is a note left on an article.
type Comment struct {
	ID        string `msgpack:"id"`
	ArticleID string `msgpack:"article"`
	Author    string `msgpack:"author"`
	Text      string `msgpack:"text"`
	Timestamp string `msgpack:"ts"`
}

// AddComment stores a comment with a fresh ID and an RFC3339 timestamp.
func (s *Store) AddComment(ctx context.Context, articleID, author, text string) (*Comment, error) {
	if articleID == "" {
		return nil, ErrEmptyArticle
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	c := &Comment{
		ID:        id.String(),
		ArticleID: articleID,
		Author:    strings.TrimSpace(author),
		Text:      text,
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}
	if c.Author == "" {
		c.Author = "anonymous"
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO comments (id, article_id, author, body, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.ArticleID, c.Author, c.Text, c.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return c, nil
}

// Comments lists an article's comments oldest first.
func (s *Store) Comments(ctx context.Context, articleID string) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, article_id, author, body, created_at FROM comments WHERE article_id = ? ORDER BY rowid`,
		articleID)
	if err != nil {
		return nil, fmt.Errorf("comments: %w", err)
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.ArticleID, &c.Author, &c.Text, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("comments: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *Store) SetLanguage(ctx context.Context, lang string) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO prefs (key, value) VALUES ('language', ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value;
	`, lang)
	if err != nil {
		return fmt.Errorf("set language: %w", err)
	}
	return nil
}

// Language returns the stored UI language, DefaultLanguage when unset.
func (s *Store) Language(ctx context.Context) (string, error) {
	var lang string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM prefs WHERE key = 'language'`).Scan(&lang)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultLanguage, nil
	}
	if err != nil {
		return "", fmt.Errorf("language: %w", err)
	}
	return lang, nil
}
