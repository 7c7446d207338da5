package checkout

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/happy-299/TomatoMall/events"
	"github.com/happy-299/TomatoMall/internal/rest"
)

// PaymentForm is the parsed equivalent of the provider's auto-submitting
// form markup: where to post and what to post.
type PaymentForm struct {
	Action string
	Method string
	Fields url.Values
}

// ParsePaymentForm extracts the auto-submit form from provider-supplied
// markup. The markup normally carries a single form with hidden inputs that a
// browser would submit on load; missing the form element means the provider
// response is unusable.
func ParsePaymentForm(markup string) (*PaymentForm, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, rest.Malformed("payment form markup: %v", err)
	}

	form := findForm(doc)
	if form == nil {
		return nil, rest.Malformed("payment form element not found in provider markup")
	}

	parsed := &PaymentForm{
		Method: http.MethodPost,
		Fields: url.Values{},
	}
	for _, attr := range form.Attr {
		switch strings.ToLower(attr.Key) {
		case "action":
			parsed.Action = attr.Val
		case "method":
			if attr.Val != "" {
				parsed.Method = strings.ToUpper(attr.Val)
			}
		}
	}
	if parsed.Action == "" {
		return nil, rest.Malformed("payment form carries no action URL")
	}

	collectFields(form, parsed.Fields)
	return parsed, nil
}

func findForm(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "form" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findForm(c); found != nil {
			return found
		}
	}
	return nil
}

func collectFields(n *html.Node, fields url.Values) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "input":
			var name, value string
			for _, attr := range n.Attr {
				switch strings.ToLower(attr.Key) {
				case "name":
					name = attr.Val
				case "value":
					value = attr.Val
				}
			}
			if name != "" {
				fields.Set(name, value)
			}
		case "textarea":
			var name string
			for _, attr := range n.Attr {
				if strings.ToLower(attr.Key) == "name" {
					name = attr.Val
				}
			}
			if name != "" {
				fields.Set(name, textContent(n))
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectFields(c, fields)
	}
}

func textContent(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// SubmitPaymentForm hands the checkout off to the payment provider by
// performing the submission a browser would: a form-encoded request to the
// form's action URL. The provider's response body is discarded; confirmation
// arrives through the return URL and status polling.
func (s *Service) SubmitPaymentForm(ctx context.Context, form *PaymentForm) error {
	if form == nil || form.Action == "" {
		return rest.Malformed("payment form is empty")
	}

	var req *http.Request
	var err error
	if form.Method == http.MethodGet {
		action := form.Action
		if len(form.Fields) > 0 {
			action += "?" + form.Fields.Encode()
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, action, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, form.Action, strings.NewReader(form.Fields.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return fmt.Errorf("build gateway request: %w", err)
	}

	resp, err := s.rest.HTTPClient().Do(req)
	if err != nil {
		return fmt.Errorf("submit payment form: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &rest.StatusError{StatusCode: resp.StatusCode}
	}

	s.log.Info("payment form submitted",
		zap.String("action", form.Action),
		zap.String("method", form.Method))
	return nil
}

// HandlePaymentReturn inspects the query parameters of the provider's return
// redirect. When the success flag is affirmative it broadcasts one
// PaymentSucceeded event and reports true. This is a local signal only; the
// authoritative confirmation path is order status polling.
func (s *Service) HandlePaymentReturn(query url.Values) bool {
	if query.Get("success") != "true" {
		return false
	}

	orderID := query.Get("out_trade_no")
	if orderID == "" {
		orderID = query.Get("orderId")
	}

	if s.bus != nil {
		s.bus.Publish(events.PaymentSucceeded{OrderID: orderID, At: time.Now()})
	}
	s.log.Info("payment return observed", zap.String("order_id", orderID))
	return true
}
