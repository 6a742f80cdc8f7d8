// package formatter provides functions to export catalog and pack data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/dhmun/mediapack/internal/models"
	"github.com/dhmun/mediapack/internal/shared"
)

// ContentsToCSV converts catalog contents to CSV with columns: ID, Kind, Title, Size, Popularity, VoteAverage
func ContentsToCSV(contents []*models.Content) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Kind", "Title", "Size", "Popularity", "VoteAverage"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, content := range contents {
		record := []string{
			content.ID(),
			string(content.Kind()),
			content.Title(),
			shared.FormatSize(content.SizeMB()),
			strconv.FormatFloat(content.Popularity(), 'f', 1, 64),
			strconv.FormatFloat(content.VoteAverage(), 'f', 1, 64),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// PackToMarkdown converts a resolved pack to Markdown
func PackToMarkdown(detail *models.PackDetail) ([]byte, error) {
	if detail == nil || detail.Pack == nil {
		return nil, fmt.Errorf("nil pack")
	}

	var buf bytes.Buffer
	pack := detail.Pack

	buf.WriteString(fmt.Sprintf("# %s\n\n", pack.Name()))
	buf.WriteString(fmt.Sprintf("> %s\n\n", pack.Message()))
	buf.WriteString(fmt.Sprintf("**Pack**: #%d\n", pack.Serial()))
	buf.WriteString(fmt.Sprintf("**Share**: %s\n", pack.ShareSlug()))
	buf.WriteString(fmt.Sprintf("**Contents**: %d\n\n", len(detail.Contents)))

	buf.WriteString("## Contents\n\n")
	for i, content := range detail.Contents {
		buf.WriteString(fmt.Sprintf("%d. [%s] %s (%s)\n", i+1, content.Kind(), content.Title(), shared.FormatSize(content.SizeMB())))
	}

	return buf.Bytes(), nil
}

// PackToText converts a resolved pack to plain text
func PackToText(detail *models.PackDetail) ([]byte, error) {
	if detail == nil || detail.Pack == nil {
		return nil, fmt.Errorf("nil pack")
	}

	var buf bytes.Buffer
	pack := detail.Pack

	buf.WriteString(fmt.Sprintf("%s (#%d)\n", pack.Name(), pack.Serial()))
	buf.WriteString(fmt.Sprintf("%s\n", pack.Message()))
	buf.WriteString(fmt.Sprintf("share: %s\n\n", pack.ShareSlug()))

	totalSize := 0
	for i, content := range detail.Contents {
		buf.WriteString(fmt.Sprintf("%2d. %-40s %s\n", i+1, content.Title(), shared.FormatSize(content.SizeMB())))
		totalSize += content.SizeMB()
	}
	buf.WriteString(fmt.Sprintf("\ntotal: %s\n", shared.FormatSize(totalSize)))

	return buf.Bytes(), nil
}
