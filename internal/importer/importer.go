package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mroshb/game_journal/internal/models"
	"github.com/mroshb/game_journal/internal/repositories"
	"github.com/mroshb/game_journal/internal/security"
	"github.com/mroshb/game_journal/internal/services"
	"github.com/mroshb/game_journal/pkg/errors"
	"github.com/mroshb/game_journal/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// MaxFileSize bounds the workbooks accepted by ImportFile.
const MaxFileSize = 20 << 20

// Columns of an activity sheet, after the header row.
const (
	colUsername = iota
	colGameTitle
	colVerb
	colStatus
	colScore
	colDuration
	colNote
	colOccurredAt
	minColumns = colVerb + 1
)

type Recorder interface {
	Record(ctx context.Context, m services.EntryMutation) (*models.ActivityEvent, bool, error)
}

// RowError describes a skipped row. Row is 1-based as shown by spreadsheet
// applications.
type RowError struct {
	Sheet string
	Row   int
	Err   error
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s row %d: %v", e.Sheet, e.Row, e.Err)
}

type Result struct {
	Imported   int
	Duplicates int
	Errors     []RowError
}

// Importer loads historical journal activity from xlsx workbooks.
type Importer struct {
	users    *repositories.UserRepository
	games    *repositories.GameRepository
	recorder Recorder
}

func New(users *repositories.UserRepository, games *repositories.GameRepository, recorder Recorder) *Importer {
	return &Importer{users: users, games: games, recorder: recorder}
}

// ImportFile imports every sheet of the workbook at path.
func (im *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	if !security.ValidateFileType(path, []string{".xlsx"}) {
		return nil, errors.New(errors.ErrCodeValidation, "only .xlsx workbooks are supported")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !security.ValidateFileSize(info.Size(), MaxFileSize) {
		return nil, errors.New(errors.ErrCodeValidation, "workbook is empty or too large")
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return im.ImportWorkbook(ctx, f)
}

// ImportWorkbook imports rows from every sheet of f, skipping each sheet's
// header row. Row failures are collected, not fatal.
func (im *Importer) ImportWorkbook(ctx context.Context, f *excelize.File) (*Result, error) {
	result := &Result{}

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return result, fmt.Errorf("read sheet %s: %w", sheet, err)
		}

		for i, row := range rows {
			if i == 0 || blank(row) {
				continue
			}
			if err := ctx.Err(); err != nil {
				return result, err
			}

			created, err := im.importRow(ctx, sheet, row)
			switch {
			case err != nil:
				result.Errors = append(result.Errors, RowError{Sheet: sheet, Row: i + 1, Err: err})
			case created:
				result.Imported++
			default:
				result.Duplicates++
			}
		}
	}

	logger.Info("Activity import finished", "imported", result.Imported, "duplicates", result.Duplicates, "failed", len(result.Errors))
	return result, nil
}

func (im *Importer) importRow(ctx context.Context, sheet string, row []string) (bool, error) {
	m, username, title, err := parseRow(row)
	if err != nil {
		return false, err
	}

	user, err := im.users.GetUserByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	game, err := im.games.FindOrCreateByTitle(ctx, title)
	if err != nil {
		return false, err
	}

	m.UserID = user.ID
	m.GameID = game.ID
	m.MutationID = rowKey(sheet, row)

	_, created, err := im.recorder.Record(ctx, m)
	return created, err
}

func parseRow(row []string) (m services.EntryMutation, username, title string, err error) {
	if len(row) < minColumns {
		return m, "", "", fmt.Errorf("expected at least %d columns, got %d", minColumns, len(row))
	}

	username = cell(row, colUsername)
	title = cell(row, colGameTitle)
	if username == "" || title == "" {
		return m, "", "", fmt.Errorf("username and game title are required")
	}

	if m.Kind, err = models.ParseActivityVerb(strings.ToUpper(cell(row, colVerb))); err != nil {
		return m, "", "", err
	}
	if raw := cell(row, colStatus); raw != "" {
		if m.Status, err = models.ParseEntryStatus(strings.ToUpper(raw)); err != nil {
			return m, "", "", err
		}
	}
	if m.Score, err = optionalInt(cell(row, colScore), "score"); err != nil {
		return m, "", "", err
	}
	if m.DurationMin, err = optionalInt(cell(row, colDuration), "duration_min"); err != nil {
		return m, "", "", err
	}
	m.Note = cell(row, colNote)
	if raw := cell(row, colOccurredAt); raw != "" {
		if m.OccurredAt, err = time.Parse(time.RFC3339, raw); err != nil {
			return m, "", "", fmt.Errorf("occurred_at must be RFC3339: %w", err)
		}
	}

	return m, username, title, nil
}

func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func optionalInt(raw, name string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a whole number", name)
	}
	return &v, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// rowKey makes re-importing the same row a no-op.
func rowKey(sheet string, row []string) string {
	sum := sha256.Sum256([]byte(sheet + "\x1f" + strings.Join(row, "\x1f")))
	return "xlsx:" + hex.EncodeToString(sum[:16])
}
