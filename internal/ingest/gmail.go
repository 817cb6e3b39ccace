// Package ingest fetches candidate notifications from Gmail and flattens
// them into domain messages: decoded bodies, extracted attachment text, and
// tabular rows for spreadsheet-shaped shortlists.
package ingest

import (
	"context"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/placementcal/placement-calendar-bot/internal/core/domain"
	"github.com/placementcal/placement-calendar-bot/internal/core/errors"
)

const gmailUser = "me"

// Gmail pulls messages for one account.
type Gmail struct {
	svc     *gmail.Service
	senders []string
	label   string
	labelID string
	logger  zerolog.Logger
}

// Options configures the fetcher.
type Options struct {
	ClientID     string
	ClientSecret string
	RefreshToken string

	// AllowedSenders are substrings matched against the sender address in
	// the Gmail query (placement cell, CDC, HR and so on).
	AllowedSenders []string

	// ProcessedLabel, when set, is applied to messages after handling so a
	// mailbox glance shows what the bot has consumed.
	ProcessedLabel string
}

// NewGmail builds an authenticated fetcher.
func NewGmail(ctx context.Context, opts Options, logger zerolog.Logger) (*Gmail, error) {
	if opts.ClientID == "" || opts.ClientSecret == "" || opts.RefreshToken == "" {
		return nil, fmt.Errorf("%w: missing google credentials", errors.ErrInvalidConfig)
	}

	config := &oauth2.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		Endpoint:     google.Endpoint,
	}

	token := &oauth2.Token{
		RefreshToken: opts.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       time.Now(),
	}

	client := oauth2.NewClient(ctx, config.TokenSource(ctx, token))

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}

	return &Gmail{
		svc:     svc,
		senders: opts.AllowedSenders,
		label:   opts.ProcessedLabel,
		logger:  logger,
	}, nil
}

// searchQuery builds the Gmail search for one run: unread mail received
// after since, restricted to the allowed senders when any are configured.
func searchQuery(since time.Time, senders []string) string {
	query := fmt.Sprintf("is:unread after:%d", since.Unix())
	if len(senders) > 0 {
		query += " from:(" + strings.Join(senders, " OR ") + ")"
	}

	return query
}

// Fetch returns every unread message received after since whose sender
// matches the allowed-sender filter. Bodies and attachments are fully
// materialized.
func (g *Gmail) Fetch(ctx context.Context, since time.Time) ([]domain.Message, error) {
	list, err := g.svc.Users.Messages.List(gmailUser).Q(searchQuery(since, g.senders)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: list messages: %v", errors.ErrFetcherUnavailable, err)
	}

	messages := make([]domain.Message, 0, len(list.Messages))

	for _, ref := range list.Messages {
		msg, err := g.fetchOne(ctx, ref.Id)
		if err != nil {
			// One unreadable message must not sink the batch.
			g.logger.Warn().Err(err).Str("message_id", ref.Id).Msg("skipping unreadable message")
			continue
		}

		messages = append(messages, msg)
	}

	return messages, nil
}

func (g *Gmail) fetchOne(ctx context.Context, id string) (domain.Message, error) {
	full, err := g.svc.Users.Messages.Get(gmailUser, id).Format("full").Context(ctx).Do()
	if err != nil {
		return domain.Message{}, fmt.Errorf("get message: %w", err)
	}

	msg := domain.Message{
		ID:         full.Id,
		ThreadID:   full.ThreadId,
		ReceivedAt: time.UnixMilli(full.InternalDate),
	}

	for _, header := range full.Payload.Headers {
		switch header.Name {
		case "Subject":
			msg.Subject = header.Value
		case "From":
			msg.Sender = header.Value
		}
	}

	g.walkPart(ctx, id, full.Payload, &msg)

	return msg, nil
}

// walkPart descends the MIME tree collecting bodies and attachments.
func (g *Gmail) walkPart(ctx context.Context, msgID string, part *gmail.MessagePart, msg *domain.Message) {
	if part == nil {
		return
	}

	switch {
	case part.Filename != "":
		g.collectAttachment(ctx, msgID, part, msg)
	case part.MimeType == "text/plain" && msg.PlainBody == "":
		msg.PlainBody = decodeBody(part)
	case part.MimeType == "text/html" && msg.HTMLBody == "":
		msg.HTMLBody = decodeBody(part)
	}

	for _, child := range part.Parts {
		g.walkPart(ctx, msgID, child, msg)
	}
}

func (g *Gmail) collectAttachment(ctx context.Context, msgID string, part *gmail.MessagePart, msg *domain.Message) {
	data := decodeBody(part)

	if data == "" && part.Body != nil && part.Body.AttachmentId != "" {
		att, err := g.svc.Users.Messages.Attachments.Get(gmailUser, msgID, part.Body.AttachmentId).Context(ctx).Do()
		if err != nil {
			g.logger.Warn().Err(err).Str("filename", part.Filename).Msg("attachment fetch failed")
			return
		}

		raw, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(att.Data)
		if err != nil {
			g.logger.Warn().Err(err).Str("filename", part.Filename).Msg("attachment decode failed")
			return
		}

		data = string(raw)
	}

	attachment := domain.Attachment{
		Filename:    part.Filename,
		ContentKind: part.MimeType,
	}

	lower := strings.ToLower(part.Filename)

	switch {
	case strings.HasSuffix(lower, ".csv") || part.MimeType == "text/csv":
		attachment.Rows = parseCSV(data)
		attachment.ExtractedText = data
	case strings.HasSuffix(lower, ".ics") || part.MimeType == "text/calendar":
		attachment.ExtractedText = data
	case strings.HasPrefix(part.MimeType, "text/"):
		attachment.ExtractedText = data
	}

	msg.Attachments = append(msg.Attachments, attachment)
}

func decodeBody(part *gmail.MessagePart) string {
	if part.Body == nil || part.Body.Data == "" {
		return ""
	}

	raw, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(part.Body.Data)
	if err != nil {
		return ""
	}

	return string(raw)
}

// parseCSV is lenient: ragged rows are allowed, a malformed file yields
// whatever rows parsed before the error.
func parseCSV(data string) [][]string {
	reader := csv.NewReader(strings.NewReader(data))
	reader.FieldsPerRecord = -1

	var rows [][]string

	for {
		record, err := reader.Read()
		if err != nil {
			break
		}

		rows = append(rows, record)
	}

	return rows
}

// MarkProcessed applies the configured label to a handled message. A
// missing label is created on first use.
func (g *Gmail) MarkProcessed(ctx context.Context, msgID string) error {
	if g.label == "" {
		return nil
	}

	if g.labelID == "" {
		id, err := g.resolveLabel(ctx)
		if err != nil {
			return err
		}

		g.labelID = id
	}

	_, err := g.svc.Users.Messages.Modify(gmailUser, msgID, &gmail.ModifyMessageRequest{
		AddLabelIds: []string{g.labelID},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: apply label: %v", errors.ErrFetcherUnavailable, err)
	}

	return nil
}

// SendSelf mails a plain-text message to the account's own address, used
// for the run summary.
func (g *Gmail) SendSelf(ctx context.Context, to, subject, body string) error {
	raw := "To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" + body

	_, err := g.svc.Users.Messages.Send(gmailUser, &gmail.Message{
		Raw: base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString([]byte(raw)),
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: send summary: %v", errors.ErrFetcherUnavailable, err)
	}

	return nil
}

func (g *Gmail) resolveLabel(ctx context.Context) (string, error) {
	list, err := g.svc.Users.Labels.List(gmailUser).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: list labels: %v", errors.ErrFetcherUnavailable, err)
	}

	for _, label := range list.Labels {
		if strings.EqualFold(label.Name, g.label) {
			return label.Id, nil
		}
	}

	created, err := g.svc.Users.Labels.Create(gmailUser, &gmail.Label{Name: g.label}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: create label: %v", errors.ErrFetcherUnavailable, err)
	}

	return created.Id, nil
}
