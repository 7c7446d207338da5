package checkout_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/happy-299/TomatoMall/checkout"
	"github.com/happy-299/TomatoMall/events"
	"github.com/happy-299/TomatoMall/internal/rest"
)

const alipayMarkup = `<form name="punchout_form" method="post" action="https://openapi.alipay.com/gateway.do?charset=utf-8">
<input type="hidden" name="biz_content" value="{&quot;out_trade_no&quot;:&quot;42&quot;}">
<input type="hidden" name="out_trade_no" value="42">
<input type="hidden" name="total_amount" value="19.90">
</form>
<script>document.forms[0].submit();</script>`

func TestParsePaymentForm(t *testing.T) {
	form, err := checkout.ParsePaymentForm(alipayMarkup)
	require.NoError(t, err)
	assert.Equal(t, "https://openapi.alipay.com/gateway.do?charset=utf-8", form.Action)
	assert.Equal(t, "POST", form.Method)
	assert.Equal(t, "42", form.Fields.Get("out_trade_no"))
	assert.Equal(t, "19.90", form.Fields.Get("total_amount"))
	assert.Equal(t, `{"out_trade_no":"42"}`, form.Fields.Get("biz_content"))
}

func TestParsePaymentFormTextarea(t *testing.T) {
	markup := `<form action="https://gateway/pay"><textarea name="payload">hello</textarea></form>`
	form, err := checkout.ParsePaymentForm(markup)
	require.NoError(t, err)
	assert.Equal(t, "hello", form.Fields.Get("payload"))
}

func TestParsePaymentFormNoForm(t *testing.T) {
	_, err := checkout.ParsePaymentForm(`<html><body>payment pending</body></html>`)
	require.Error(t, err)
	assert.True(t, rest.IsMalformed(err))
}

func TestParsePaymentFormNoAction(t *testing.T) {
	_, err := checkout.ParsePaymentForm(`<form method="post"><input name="a" value="b"></form>`)
	require.Error(t, err)
	assert.True(t, rest.IsMalformed(err))
}

func TestSubmitPaymentForm(t *testing.T) {
	var gotOutTradeNo string
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotOutTradeNo = r.PostForm.Get("out_trade_no")
		w.Write([]byte("success"))
	}))
	defer gateway.Close()

	svc := checkout.NewService(rest.NewClient(gateway.URL), &events.Bus{}, zap.NewNop())

	form := &checkout.PaymentForm{
		Action: gateway.URL + "/pay",
		Method: "POST",
		Fields: url.Values{"out_trade_no": {"42"}},
	}
	require.NoError(t, svc.SubmitPaymentForm(context.Background(), form))
	assert.Equal(t, "42", gotOutTradeNo)
}

func TestSubmitPaymentFormGatewayFailure(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer gateway.Close()

	svc := checkout.NewService(rest.NewClient(gateway.URL), &events.Bus{}, zap.NewNop())

	form := &checkout.PaymentForm{Action: gateway.URL + "/pay", Method: "POST", Fields: url.Values{}}
	err := svc.SubmitPaymentForm(context.Background(), form)
	require.Error(t, err)

	var statusErr *rest.StatusError
	assert.ErrorAs(t, err, &statusErr)
}

func TestHandlePaymentReturnBroadcastsOnce(t *testing.T) {
	bus := &events.Bus{}
	svc := checkout.NewService(rest.NewClient("http://unused"), bus, zap.NewNop())

	ch, cancel := bus.Subscribe(2)
	defer cancel()

	handled := svc.HandlePaymentReturn(url.Values{
		"success":      {"true"},
		"out_trade_no": {"42"},
	})
	assert.True(t, handled)

	select {
	case ev := <-ch:
		assert.Equal(t, "42", ev.OrderID)
		assert.WithinDuration(t, time.Now(), ev.At, time.Minute)
	default:
		t.Fatal("expected one payment event")
	}

	select {
	case <-ch:
		t.Fatal("expected exactly one payment event")
	default:
	}
}

func TestHandlePaymentReturnIgnoresFailure(t *testing.T) {
	bus := &events.Bus{}
	svc := checkout.NewService(rest.NewClient("http://unused"), bus, zap.NewNop())

	ch, cancel := bus.Subscribe(1)
	defer cancel()

	tests := []url.Values{
		{},
		{"success": {"false"}},
		{"success": {"TRUE"}},
		{"success": {"1"}},
	}
	for _, query := range tests {
		assert.False(t, svc.HandlePaymentReturn(query))
	}

	select {
	case <-ch:
		t.Fatal("no event expected")
	default:
	}
}

func TestHandlePaymentReturnFallsBackToOrderID(t *testing.T) {
	bus := &events.Bus{}
	svc := checkout.NewService(rest.NewClient("http://unused"), bus, zap.NewNop())

	ch, cancel := bus.Subscribe(1)
	defer cancel()

	assert.True(t, svc.HandlePaymentReturn(url.Values{
		"success": {"true"},
		"orderId": {"7"},
	}))

	ev := <-ch
	assert.Equal(t, "7", ev.OrderID)
}
