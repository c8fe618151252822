// Package audit appends staff actions to an immutable JSON-lines file and
// reads them back for the alerts scanner. Writes are fail-open: losing an
// audit entry must never block the staff action that triggered it.
package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"smart-trolley-backend/models"
)

// Log defines the interface the staff endpoints and the alerts scanner use.
type Log interface {
	Record(actor, action, targetID string, details map[string]interface{})
	ReadRecent(limit int) ([]models.AuditEntry, error)
}

// FileLog implements Log against an append-only local file, one JSON
// object per line.
type FileLog struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

// NewFileLog creates a file-backed audit log.
func NewFileLog(path string, logger *zap.Logger) *FileLog {
	return &FileLog{path: path, logger: logger}
}

// Record appends one entry. Failures are logged and swallowed.
func (l *FileLog) Record(actor, action, targetID string, details map[string]interface{}) {
	entry := models.AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Actor:     actor,
		Action:    action,
		TargetID:  targetID,
		Details:   details,
	}

	line, err := json.Marshal(entry)
	if err != nil {
		l.logger.Warn("Failed to encode audit entry", zap.Error(err))
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		l.logger.Warn("Failed to open audit log", zap.String("path", l.path), zap.Error(err))
		return
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		l.logger.Warn("Failed to write audit entry", zap.Error(err))
	}
}

// ReadRecent returns up to limit entries, newest first. Lines that fail to
// parse are skipped rather than failing the read.
func (l *FileLog) ReadRecent(limit int) ([]models.AuditEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []models.AuditEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry models.AuditEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			l.logger.Debug("Skipping malformed audit line", zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// newest first, capped
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
