package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"PerpScan/internal/domain/models"
	drepo "PerpScan/internal/domain/repository"
	xhttp "PerpScan/pkg/http"
)

// WxPusher sends alert pushes through the WxPusher simple-push API.
type WxPusher struct {
	url   string
	token string
	http  *xhttp.Client
}

// NewWxPusher creates a WxPusher notifier.
func NewWxPusher(url, token string, timeout time.Duration) drepo.Notifier {
	return &WxPusher{
		url:   url,
		token: token,
		http:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// Send pushes one notification. HTML body, summary line for the chat list.
func (w *WxPusher) Send(ctx context.Context, n models.Notification) error {
	content := fmt.Sprintf(
		"<h1>%s</h1>"+
			"<p><b>scope:</b> %s</p>"+
			"<p><b>kind:</b> %s</p>"+
			"<p><b>%s:</b> %s</p>"+
			"<p><b>%s:</b> %s</p>"+
			"<p><b>time:</b> %s</p>",
		n.Title, n.Scope, n.KindLabel,
		n.TargetLabel, n.TargetValue.String(),
		n.CurrentLabel, n.CurrentValue.String(),
		n.At.Format("2006-01-02 15:04:05"),
	)

	body, err := json.Marshal(map[string]interface{}{
		"content":     content,
		"summary":     fmt.Sprintf("%s: %s reached %s", n.KindLabel, n.Scope, n.TargetValue.String()),
		"contentType": 2, // HTML
		"spt":         w.token,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	if err := w.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: "POST",
		URL:    w.url,
		Body:   string(body),
	}, nil); err != nil {
		return fmt.Errorf("wxpusher send: %w", err)
	}
	return nil
}
