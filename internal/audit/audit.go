package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/mrlokans/clippings/internal/entities"
)

// Auditor keeps one JSON file per run so failed blocks can be inspected
// after the output file has been rewritten by later runs.
type Auditor struct {
	AuditDir string
}

func NewAuditor(auditDir string) *Auditor {
	return &Auditor{
		AuditDir: auditDir,
	}
}

// NewRunID returns the identifier stamped on a run report.
func NewRunID() string {
	return uuid.New().String()
}

// SaveReport writes report to <AuditDir>/<report.ID>.json, assigning an ID
// first when the report has none.
func (a *Auditor) SaveReport(report *entities.RunReport) (string, error) {
	if report.ID == "" {
		report.ID = NewRunID()
	}

	if err := a.ensureAuditDir(); err != nil {
		return "", fmt.Errorf("failed to ensure audit directory: %w", err)
	}

	filename := fmt.Sprintf("%s.json", report.ID)
	path := filepath.Join(a.AuditDir, filename)

	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run report: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write audit file: %w", err)
	}

	log.Printf("[AUDIT] Saved run report %s", path)
	return filename, nil
}

// ensureAuditDir creates the audit directory if it doesn't exist
func (a *Auditor) ensureAuditDir() error {
	if _, err := os.Stat(a.AuditDir); os.IsNotExist(err) {
		if err := os.MkdirAll(a.AuditDir, 0755); err != nil {
			return fmt.Errorf("failed to create audit directory: %w", err)
		}
	}
	return nil
}
