package utils

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"thudl/internal/models"
)

// FormatBytes renders a byte count in binary units (KiB, MiB, ...).
func FormatBytes(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}

func PrintJSON(data interface{}) error {
	jsonOutput, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(jsonOutput))
	return nil
}

func PrintError(err error, command string) {
	errorResp := models.ErrorResponse{
		Error:     err.Error(),
		Timestamp: time.Now().Format(time.RFC3339),
		Command:   command,
	}
	if perr := PrintJSON(errorResp); perr != nil {
		slog.Error("Failed to print error in JSON format", "error", perr)
		fmt.Println("Error: ", errorResp)
	}
}

func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}
