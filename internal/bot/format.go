package bot

import (
	"fmt"
	"strings"

	"tgstore/internal/filestore"
)

// formatSize renders a byte count in human-readable form.
func formatSize(bytes int64) string {
	if bytes == 0 {
		return "0 B"
	}

	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(bytes)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d B", bytes)
	}
	return fmt.Sprintf("%.2f %s", size, units[i])
}

// escapeMarkdown escapes Telegram Markdown metacharacters so arbitrary
// display names cannot corrupt the message structure.
func escapeMarkdown(text string) string {
	r := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"]", "\\]",
		"(", "\\(",
		")", "\\)",
	)
	return r.Replace(text)
}

func (b *Bot) welcomeText() string {
	limits := b.svc.Limits()
	return fmt.Sprintf(
		"*Welcome to File Storage Bot!*\n\n"+
			"I store and manage files using Telegram's servers.\n\n"+
			"*Commands:*\n"+
			"/upload - How to upload a file\n"+
			"/list - List your uploaded files\n"+
			"/details <filename> - Detailed file information\n"+
			"/stats - Your storage statistics\n"+
			"/download <filename> - Download a file\n"+
			"/delete <filename> - Delete a file\n"+
			"/help - Show help\n\n"+
			"*Limits:*\n"+
			"Max upload: %s\n"+
			"Max download: %s\n"+
			"Max files: %d",
		formatSize(limits.UploadCeiling()),
		formatSize(limits.MaxDownloadBytes),
		limits.MaxFilesPerOwner)
}

func (b *Bot) uploadText() string {
	return fmt.Sprintf(
		"*Upload a file*\n\n"+
			"Send any document, photo, video, audio or voice message to this chat and I will record it.\n\n"+
			"Maximum size: %s",
		formatSize(b.svc.Limits().UploadCeiling()))
}

const helpText = "*File Storage Bot Help*\n\n" +
	"1. Send any file to upload it\n" +
	"2. /list shows your files\n" +
	"3. /details filename shows complete file info\n" +
	"4. /stats shows your storage usage\n" +
	"5. /download filename sends a file back\n" +
	"6. /delete filename removes a file\n\n" +
	"File names are case-sensitive. Files are stored on Telegram's servers; only the metadata lives with the bot."

// renderFileList formats an owner's files for the /list command.
func renderFileList(records []*filestore.FileRecord) string {
	if len(records) == 0 {
		return "No files found.\n\nSend me a file to get started!"
	}

	var total int64
	for _, r := range records {
		total += r.SizeBytes
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "*Your files* (%d files, %s total):\n\n", len(records), formatSize(total))
	for i, r := range records {
		fmt.Fprintf(&sb, "%d. *%s*\n   %s | %s | %s\n",
			i+1, escapeMarkdown(r.DisplayName),
			formatSize(r.SizeBytes), r.Category,
			r.CreatedAt.Format("2006-01-02"))
	}
	sb.WriteString("\nUse /download, /details, /delete with a filename, or /stats for usage.")
	return sb.String()
}

// renderDetails formats a single record for the /details command.
func renderDetails(r *filestore.FileRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*File details: %s*\n\n", escapeMarkdown(r.DisplayName))
	fmt.Fprintf(&sb, "Size: %s\n", formatSize(r.SizeBytes))
	fmt.Fprintf(&sb, "Type: %s\n", r.Category)
	fmt.Fprintf(&sb, "Uploaded: %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "File ID: `%s`\n", r.BlobRef)
	if r.BlobUniqueRef != "" {
		fmt.Fprintf(&sb, "Unique ID: `%s`\n", r.BlobUniqueRef)
	}
	fmt.Fprintf(&sb, "Record ID: %d", r.ID)
	return sb.String()
}

// renderStats formats storage statistics for the /stats command.
func renderStats(stats *filestore.Stats, limits filestore.Limits) string {
	if stats.TotalCount == 0 {
		return fmt.Sprintf(
			"*Your storage statistics*\n\nNo files stored yet\nTotal storage used: 0 B\nFiles remaining: %d",
			limits.MaxFilesPerOwner)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "*Your storage statistics*\n\n")
	fmt.Fprintf(&sb, "Total files: %d/%d\n", stats.TotalCount, limits.MaxFilesPerOwner)
	fmt.Fprintf(&sb, "Total storage used: %s\n", formatSize(stats.TotalBytes))
	fmt.Fprintf(&sb, "Files remaining: %d\n\n", limits.MaxFilesPerOwner-stats.TotalCount)

	sb.WriteString("*File types:*\n")
	for _, c := range []filestore.Category{
		filestore.CategoryDocument, filestore.CategoryImage, filestore.CategoryVideo,
		filestore.CategoryAudio, filestore.CategoryVoice, filestore.CategoryOther,
	} {
		if n := stats.CountByCategory[c]; n > 0 {
			fmt.Fprintf(&sb, "- %s: %d (%s)\n", c, n, formatSize(stats.BytesByCategory[c]))
		}
	}

	if len(stats.Largest) > 0 {
		sb.WriteString("\n*Largest files:*\n")
		for i, r := range stats.Largest {
			fmt.Fprintf(&sb, "%d. %s (%s)\n", i+1, escapeMarkdown(r.DisplayName), formatSize(r.SizeBytes))
		}
	}
	return sb.String()
}
