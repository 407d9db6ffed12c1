package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"support-bot/internal/database"
	"support-bot/internal/database/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const (
	usersSheet    = "Пользователи"
	messagesSheet = "Сообщения"

	usersHeaderColor    = "4472C4"
	messagesHeaderColor = "70AD47"
)

// ExcelExporter builds an xlsx workbook with every user and the full
// conversation history.
type ExcelExporter struct {
	users    database.UserRepository
	messages database.MessageRepository
	dir      string
	log      zerolog.Logger
}

// NewExcelExporter creates an exporter that writes workbooks into dir.
func NewExcelExporter(users database.UserRepository, messages database.MessageRepository, dir string, log zerolog.Logger) (*ExcelExporter, error) {
	if users == nil {
		return nil, fmt.Errorf("user repository cannot be nil")
	}
	if messages == nil {
		return nil, fmt.Errorf("message repository cannot be nil")
	}
	return &ExcelExporter{
		users:    users,
		messages: messages,
		dir:      dir,
		log:      log.With().Str("component", "export").Logger(),
	}, nil
}

// ExportAll writes the workbook and returns its path.
func (e *ExcelExporter) ExportAll(ctx context.Context) (string, error) {
	users, err := e.users.All(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load users: %w", err)
	}
	messages, err := e.messages.AllMessages(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load messages: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.log.Error().Err(err).Msg("failed to close workbook")
		}
	}()

	if err := e.writeUsersSheet(f, users, messages); err != nil {
		return "", err
	}
	if err := e.writeMessagesSheet(f, users, messages); err != nil {
		return "", err
	}

	// The default sheet is replaced by the two named ones.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", fmt.Errorf("failed to drop default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(usersSheet)
	if err != nil {
		return "", fmt.Errorf("failed to find users sheet: %w", err)
	}
	f.SetActiveSheet(index)

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(e.dir, fmt.Sprintf("support_export_%s.xlsx", time.Now().Format("2006-01-02_15-04-05")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	e.log.Info().Str("path", path).Int("users", len(users)).Int("messages", len(messages)).Msg("export written")
	return path, nil
}

func (e *ExcelExporter) writeUsersSheet(f *excelize.File, users []models.User, messages []models.Message) error {
	if _, err := f.NewSheet(usersSheet); err != nil {
		return fmt.Errorf("failed to create users sheet: %w", err)
	}

	headers := []string{"ID", "Имя", "Телефон", "Первое обращение", "Последнее обращение", "Вопросов", "Ответов"}
	if err := writeHeader(f, usersSheet, headers, usersHeaderColor); err != nil {
		return err
	}

	questions := make(map[int64]int)
	replies := make(map[int64]int)
	for _, msg := range messages {
		if msg.Direction == models.DirectionFromUser {
			questions[msg.UserID]++
		} else {
			replies[msg.UserID]++
		}
	}

	for i, user := range users {
		row := i + 2
		values := []interface{}{
			user.UserID,
			user.Name,
			user.PhoneNumber,
			user.FirstContact.Format("02.01.2006 15:04"),
			user.LastContact.Format("02.01.2006 15:04"),
			questions[user.UserID],
			replies[user.UserID],
		}
		if err := writeRow(f, usersSheet, row, values); err != nil {
			return err
		}
	}

	return autoWidth(f, usersSheet, len(headers))
}

func (e *ExcelExporter) writeMessagesSheet(f *excelize.File, users []models.User, messages []models.Message) error {
	if _, err := f.NewSheet(messagesSheet); err != nil {
		return fmt.Errorf("failed to create messages sheet: %w", err)
	}

	headers := []string{"Время", "ID пользователя", "Пользователь", "Направление", "Оператор", "Текст"}
	if err := writeHeader(f, messagesSheet, headers, messagesHeaderColor); err != nil {
		return err
	}

	names := make(map[int64]string, len(users))
	for _, user := range users {
		names[user.UserID] = user.Name
	}

	for i, msg := range messages {
		direction := "от пользователя"
		if msg.Direction == models.DirectionToUser {
			direction = "ответ оператора"
		}
		row := i + 2
		values := []interface{}{
			msg.Timestamp.Format("02.01.2006 15:04:05"),
			msg.UserID,
			names[msg.UserID],
			direction,
			msg.OperatorName,
			msg.Text,
		}
		if err := writeRow(f, messagesSheet, row, values); err != nil {
			return err
		}
	}

	return autoWidth(f, messagesSheet, len(headers))
}

func writeHeader(f *excelize.File, sheet string, headers []string, color string) error {
	styleID, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to resolve header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell: %w", err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return fmt.Errorf("failed to resolve header range: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, styleID); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("failed to resolve cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	return nil
}

func autoWidth(f *excelize.File, sheet string, columns int) error {
	for i := 1; i <= columns; i++ {
		name, err := excelize.ColumnNumberToName(i)
		if err != nil {
			return fmt.Errorf("failed to resolve column name: %w", err)
		}
		width := 14.0
		if i == columns {
			width = 60.0
		}
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	return nil
}
