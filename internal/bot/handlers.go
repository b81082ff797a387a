package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tgstore/internal/filestore"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	ownerID := msg.From.ID
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		b.reply(chatID, b.welcomeText())
	case "help":
		b.reply(chatID, helpText)
	case "upload":
		b.reply(chatID, b.uploadText())
	case "list":
		b.handleList(ctx, chatID, ownerID)
	case "details":
		b.handleDetails(ctx, chatID, ownerID, args)
	case "stats":
		b.handleStats(ctx, chatID, ownerID)
	case "download":
		b.handleDownload(ctx, chatID, ownerID, args)
	case "delete":
		b.handleDelete(ctx, chatID, ownerID, args)
	default:
		b.reply(chatID, "Unknown command. Use /help to see what I can do.")
	}
}

// handleFileMessage records any file-bearing message as an upload.
func (b *Bot) handleFileMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	ownerID := msg.From.ID

	draft, ok := draftFromMessage(msg)
	if !ok {
		return // not a file-bearing message
	}

	// Uploading a second file under an existing name would make name
	// lookups (/download, /delete) ambiguous, so warn instead.
	if _, err := b.svc.FindByName(ctx, ownerID, draft.DisplayName); err == nil {
		b.reply(chatID, fmt.Sprintf(
			"A file named '%s' already exists.\nRename the file or delete the existing one first.",
			escapeMarkdown(draft.DisplayName)))
		return
	}

	record, err := b.svc.RecordUpload(ctx, draft)
	if err != nil {
		b.reply(chatID, uploadErrorText(err))
		return
	}

	b.reply(chatID, fmt.Sprintf(
		"*Upload successful!*\n\nFile: %s\nSize: %s\nType: %s\n\nUse /download %s to get it back later.",
		escapeMarkdown(record.DisplayName), formatSize(record.SizeBytes),
		record.Category, escapeMarkdown(record.DisplayName)))
	b.logger.Info("upload handled", "owner", ownerID, "name", record.DisplayName)
}

func (b *Bot) handleList(ctx context.Context, chatID, ownerID int64) {
	records, err := b.svc.ListFiles(ctx, ownerID)
	if err != nil {
		b.logger.Error("listing files", "owner", ownerID, "err", err)
		b.reply(chatID, "An error occurred while retrieving your files.")
		return
	}
	b.reply(chatID, renderFileList(records))
}

func (b *Bot) handleDetails(ctx context.Context, chatID, ownerID int64, name string) {
	if name == "" {
		b.reply(chatID, "Please specify a filename.\nUsage: `/details filename`\nUse /list to see your files.")
		return
	}

	record, err := b.svc.FindByName(ctx, ownerID, name)
	if err != nil {
		b.replyLookupError(chatID, name, err)
		return
	}
	b.reply(chatID, renderDetails(record))
}

func (b *Bot) handleStats(ctx context.Context, chatID, ownerID int64) {
	stats, err := b.svc.GetStats(ctx, ownerID)
	if err != nil {
		b.logger.Error("computing stats", "owner", ownerID, "err", err)
		b.reply(chatID, "An error occurred while retrieving storage statistics.")
		return
	}
	b.reply(chatID, renderStats(stats, b.svc.Limits()))
}

func (b *Bot) handleDownload(ctx context.Context, chatID, ownerID int64, name string) {
	if name == "" {
		b.reply(chatID, "Please specify a filename.\nUsage: `/download filename`\nUse /list to see your files.")
		return
	}

	record, err := b.svc.FindByName(ctx, ownerID, name)
	if err != nil {
		b.replyLookupError(chatID, name, err)
		return
	}

	record, err = b.svc.PrepareDownload(ctx, ownerID, record.ID)
	if err != nil {
		var tl *filestore.TooLargeError
		if errors.As(err, &tl) {
			b.reply(chatID, fmt.Sprintf("File too large for download. Maximum download size is %s.", formatSize(tl.Limit)))
			return
		}
		b.replyLookupError(chatID, name, err)
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileID(record.BlobRef))
	doc.Caption = fmt.Sprintf("%s (%s)", record.DisplayName, formatSize(record.SizeBytes))
	if _, err := b.send.Send(doc); err != nil {
		b.logger.Error("sending document", "owner", ownerID, "name", name, "err", err)
		b.reply(chatID, "Failed to send the file. It may no longer be available on Telegram's servers.")
		return
	}
	b.logger.Info("download served", "owner", ownerID, "name", name)
}

func (b *Bot) handleDelete(ctx context.Context, chatID, ownerID int64, name string) {
	if name == "" {
		b.reply(chatID, "Please specify a filename.\nUsage: `/delete filename`\nUse /list to see your files.")
		return
	}

	record, err := b.svc.FindByName(ctx, ownerID, name)
	if err != nil {
		b.replyLookupError(chatID, name, err)
		return
	}

	if err := b.svc.DeleteFile(ctx, ownerID, record.ID); err != nil {
		b.replyLookupError(chatID, name, err)
		return
	}

	b.reply(chatID, fmt.Sprintf(
		"*File deleted.*\n\nFile: %s\nSize: %s\n\nNote: the file is removed from your list but may still exist on Telegram's servers.",
		escapeMarkdown(record.DisplayName), formatSize(record.SizeBytes)))
}

func (b *Bot) replyLookupError(chatID int64, name string, err error) {
	if errors.Is(err, filestore.ErrNotFound) {
		b.reply(chatID, fmt.Sprintf("File '%s' not found.\nUse /list to see your available files.", escapeMarkdown(name)))
		return
	}
	b.logger.Error("file lookup", "name", name, "err", err)
	b.reply(chatID, "An error occurred. Please try again.")
}

// draftFromMessage extracts an upload draft from a file-bearing message.
// Telegram delivers each file kind in its own field; files without a
// platform-supplied name get one synthesized from their unique ref, the
// way the original bot named them.
func draftFromMessage(msg *tgbotapi.Message) (filestore.Draft, bool) {
	ownerID := msg.From.ID

	switch {
	case msg.Document != nil:
		d := msg.Document
		return filestore.Draft{
			OwnerID:       ownerID,
			BlobRef:       d.FileID,
			BlobUniqueRef: d.FileUniqueID,
			DisplayName:   d.FileName,
			SizeBytes:     int64(d.FileSize),
			Category:      filestore.CategoryFromMIME(d.MimeType),
		}, true
	case len(msg.Photo) > 0:
		p := msg.Photo[len(msg.Photo)-1] // largest size
		return filestore.Draft{
			OwnerID:       ownerID,
			BlobRef:       p.FileID,
			BlobUniqueRef: p.FileUniqueID,
			DisplayName:   "photo_" + p.FileUniqueID + ".jpg",
			SizeBytes:     int64(p.FileSize),
			Category:      filestore.CategoryImage,
		}, true
	case msg.Video != nil:
		v := msg.Video
		name := v.FileName
		if name == "" {
			name = "video_" + v.FileUniqueID + ".mp4"
		}
		return filestore.Draft{
			OwnerID:       ownerID,
			BlobRef:       v.FileID,
			BlobUniqueRef: v.FileUniqueID,
			DisplayName:   name,
			SizeBytes:     int64(v.FileSize),
			Category:      filestore.CategoryVideo,
		}, true
	case msg.Audio != nil:
		a := msg.Audio
		name := a.FileName
		if name == "" {
			name = "audio_" + a.FileUniqueID + ".mp3"
		}
		return filestore.Draft{
			OwnerID:       ownerID,
			BlobRef:       a.FileID,
			BlobUniqueRef: a.FileUniqueID,
			DisplayName:   name,
			SizeBytes:     int64(a.FileSize),
			Category:      filestore.CategoryAudio,
		}, true
	case msg.Voice != nil:
		v := msg.Voice
		return filestore.Draft{
			OwnerID:       ownerID,
			BlobRef:       v.FileID,
			BlobUniqueRef: v.FileUniqueID,
			DisplayName:   "voice_" + v.FileUniqueID + ".ogg",
			SizeBytes:     int64(v.FileSize),
			Category:      filestore.CategoryVoice,
		}, true
	case msg.VideoNote != nil:
		v := msg.VideoNote
		return filestore.Draft{
			OwnerID:       ownerID,
			BlobRef:       v.FileID,
			BlobUniqueRef: v.FileUniqueID,
			DisplayName:   "video_note_" + v.FileUniqueID + ".mp4",
			SizeBytes:     int64(v.FileSize),
			Category:      filestore.CategoryVideo,
		}, true
	}
	return filestore.Draft{}, false
}

// uploadErrorText maps a RecordUpload failure to a user-facing message.
func uploadErrorText(err error) string {
	var (
		tl *filestore.TooLargeError
		qe *filestore.QuotaExceededError
	)
	switch {
	case errors.As(err, &tl):
		return fmt.Sprintf("File too large. Maximum upload size is %s.", formatSize(tl.Limit))
	case errors.As(err, &qe):
		return fmt.Sprintf(
			"You have reached the maximum file limit (%d files).\nPlease delete some files before uploading new ones.",
			qe.Limit)
	case errors.Is(err, filestore.ErrInvalidSize):
		return "Could not determine the file's size. Please try again."
	default:
		return "An error occurred while processing your upload. Please try again."
	}
}
