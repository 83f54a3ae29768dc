package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PMacajol/Agro-MAGU/internal/data"
)

func sampleRecommendation() data.Recommendation {
	return data.Recommendation{
		Diagnosis:     "Déficit de <P> & K",
		Name:          "Plan 10-30-20",
		Dose:          "100 lb/manzana",
		Product:       "NPK 10-30-20",
		Price:         "GTQ 700",
		Schedule:      "Siembra y floración",
		Effectiveness: "92%",
		Benefits:      []string{"b1", "b2", "b3", "b4", "b5", "b6", "b7"},
		Precautions:   []string{"p1"},
	}
}

func TestFormatRecommendation(t *testing.T) {
	at := time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC)
	msg := FormatRecommendation(sampleRecommendation(), at)

	assert.True(t, strings.HasPrefix(msg, "🌱 <b>RECOMENDACIÓN DE FERTILIZACIÓN - CULTIVO DE FRIJOL</b>"))
	assert.Contains(t, msg, "<i>Déficit de &lt;P&gt; &amp; K</i>")
	assert.Contains(t, msg, "<code>Plan 10-30-20</code>")
	assert.Contains(t, msg, "• <b>Dosis por manzana:</b> 100 lb/manzana")
	assert.Contains(t, msg, "• b5\n")
	assert.NotContains(t, msg, "b6")
	assert.Contains(t, msg, "<b>⚠️ Precauciones:</b>\n• p1\n")
	assert.Contains(t, msg, "Monitoreo para cultivo de frijol en Guatemala")
	assert.Contains(t, msg, "10/3/2025, 12:30:00")
}

func TestFormatRecommendation_EmptyLists(t *testing.T) {
	rec := sampleRecommendation()
	rec.Benefits = nil
	rec.Precautions = nil
	msg := FormatRecommendation(rec, time.Now())

	assert.NotContains(t, msg, "Beneficios Técnicos")
	assert.NotContains(t, msg, "Precauciones")
}

func TestFormatActivation(t *testing.T) {
	msg := FormatActivation(5*time.Minute, time.Now())
	assert.Contains(t, msg, "Sistema de Monitoreo Activado")
	assert.Contains(t, msg, "cada 5 minutos")

	assert.Contains(t, FormatActivation(1500*time.Millisecond, time.Now()), "cada 1.5s")
}

func TestTelegramNotifier_Send(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier(srv.URL, "TOKEN", "42", time.Second)
	require.NoError(t, n.Send(context.Background(), "<b>hola</b>"))

	assert.Equal(t, "42", body["chat_id"])
	assert.Equal(t, "<b>hola</b>", body["text"])
	assert.Equal(t, "HTML", body["parse_mode"])
}

func TestTelegramNotifier_Errors(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		err := NewTelegramNotifier("http://127.0.0.1:1", "", "42", time.Second).Send(context.Background(), "x")
		assert.ErrorIs(t, err, ErrNotConfigured)

		err = NewTelegramNotifier("http://127.0.0.1:1", "T", "", time.Second).Send(context.Background(), "x")
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("api description surfaced", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
		}))
		defer srv.Close()

		err := NewTelegramNotifier(srv.URL, "T", "1", time.Second).Send(context.Background(), "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "chat not found")
	})

	t.Run("unreachable", func(t *testing.T) {
		err := NewTelegramNotifier("http://127.0.0.1:1", "T", "1", time.Second).Send(context.Background(), "x")
		assert.Error(t, err)
	})
}

func TestTelegramNotifier_TestConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botT/getMe", r.URL.Path)
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"username":"frijol_bot"}}`))
	}))
	defer srv.Close()

	var tester ConnectionTester = NewTelegramNotifier(srv.URL, "T", "", time.Second)
	name, err := tester.TestConnection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "frijol_bot", name)

	_, err = NewTelegramNotifier(srv.URL, "", "", time.Second).TestConnection(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestEmailNotifier(t *testing.T) {
	n := NewEmailNotifier("smtp.example.com", 587, "", "", []string{"a@example.com"})
	assert.ErrorIs(t, n.Send(context.Background(), "x"), ErrNotConfigured)

	n = NewEmailNotifier("smtp.example.com", 587, "bot@example.com", "pw", []string{"a@example.com", "b@example.com"})
	var buf bytes.Buffer
	_, err := n.message("hola\nmundo").WriteTo(&buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Subject: "+emailSubject)
	assert.Contains(t, out, "a@example.com")
	assert.Contains(t, out, "b@example.com")
	assert.Contains(t, out, "hola<br>")
}

func TestEmailNotifier_HungServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	// Accept and never send the SMTP greeting.
	conns := make(chan net.Conn, 1)
	go func() {
		if c, err := ln.Accept(); err == nil {
			conns <- c
		}
	}()
	defer func() {
		select {
		case c := <-conns:
			c.Close()
		case <-time.After(time.Second):
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	n := NewEmailNotifier("127.0.0.1", addr.Port, "bot@example.com", "pw", []string{"a@example.com"})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = n.Send(ctx, "hola")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}
