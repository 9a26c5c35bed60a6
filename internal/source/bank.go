package source

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/defuse/internal/quiz"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Bank is a SQLite-backed question bank.
type Bank struct {
	db *sql.DB
}

// OpenBank opens or creates the question bank and applies migrations.
func OpenBank(path string) (*Bank, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	bank := &Bank{db: db}
	if err := bank.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return bank, nil
}

// Close closes the underlying database.
func (b *Bank) Close() error {
	return b.db.Close()
}

func (b *Bank) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS questions (
			id TEXT PRIMARY KEY,
			seq INTEGER NOT NULL,
			text TEXT NOT NULL,
			answer TEXT NOT NULL,
			imported_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS question_options (
			question_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			text TEXT NOT NULL,
			PRIMARY KEY (question_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_questions_seq ON questions(seq);`,
	}
	for _, stmt := range stmts {
		if _, err := b.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Import stores questions in the bank, replacing entries with the same id.
// Questions without an id are assigned a random one. When replace is set
// the bank is emptied first.
func (b *Bank) Import(ctx context.Context, questions []quiz.Question, replace bool) (n int, err error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if replace {
		if _, err = tx.ExecContext(ctx, `DELETE FROM question_options`); err != nil {
			return 0, err
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM questions`); err != nil {
			return 0, err
		}
	}

	var base int64
	if err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM questions`).Scan(&base); err != nil {
		return 0, err
	}

	importedAt := time.Now().UTC().Format(time.RFC3339Nano)
	for i, q := range questions {
		id := q.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO questions (id, seq, text, answer, imported_at) VALUES (?, ?, ?, ?, ?)`,
			id, base+int64(i)+1, q.Text, q.Correct, importedAt,
		); err != nil {
			return 0, err
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM question_options WHERE question_id = ?`, id); err != nil {
			return 0, err
		}
		for pos, opt := range q.Options {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO question_options (question_id, position, text) VALUES (?, ?, ?)`,
				id, pos, opt,
			); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return len(questions), nil
}

// Questions returns every question in import order. It implements quiz.Source.
func (b *Bank) Questions(ctx context.Context) ([]quiz.Question, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT q.id, q.text, q.answer, o.text
		FROM questions q
		JOIN question_options o ON o.question_id = q.id
		ORDER BY q.seq ASC, o.position ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []quiz.Question
	for rows.Next() {
		var id, text, answer, option string
		if err := rows.Scan(&id, &text, &answer, &option); err != nil {
			return nil, err
		}
		if n := len(result); n == 0 || result[n-1].ID != id {
			result = append(result, quiz.Question{ID: id, Text: text, Correct: answer})
		}
		last := &result[len(result)-1]
		last.Options = append(last.Options, option)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Count returns the number of stored questions.
func (b *Bank) Count(ctx context.Context) (int, error) {
	var n int
	if err := b.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// BankFile is a quiz.Source that opens the bank at Path for each fetch.
type BankFile struct {
	Path string
}

// Questions implements quiz.Source.
func (f BankFile) Questions(ctx context.Context) ([]quiz.Question, error) {
	if _, err := os.Stat(f.Path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("question bank %s does not exist (import with: defuse questions import <file>)", f.Path)
		}
		return nil, fmt.Errorf("failed to stat question bank: %w", err)
	}
	bank, err := OpenBank(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open question bank: %w", err)
	}
	defer func() {
		if cerr := bank.Close(); cerr != nil {
			// Best-effort close for a read-only fetch.
			_ = cerr
		}
	}()
	questions, err := bank.Questions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank: %w", err)
	}
	return questions, nil
}

func (f BankFile) String() string {
	return "bank:" + f.Path
}
