package mailer

import (
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{User: "u", Pass: "p", From: "f@x.mx"})
	assert.ErrorContains(t, err, "host")
	_, err = New(Config{Host: "h", From: "f@x.mx"})
	assert.ErrorContains(t, err, "username and password")
	_, err = New(Config{Host: "h", User: "u", Pass: "p"})
	assert.ErrorContains(t, err, "sender")

	m, err := New(Config{Host: "h", User: "u", Pass: "p", From: "f@x.mx"})
	require.NoError(t, err)
	assert.Equal(t, "587", m.cfg.Port)
}

func TestMailer_Send(t *testing.T) {
	m, err := New(Config{Host: "smtp.example.com", Port: "2525", User: "u", Pass: "p", From: "tienda@example.com"})
	require.NoError(t, err)

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, m.Send("cliente@example.com", "Pedido confirmado", "<p>Gracias</p>"))
	assert.Equal(t, "smtp.example.com:2525", gotAddr)
	assert.Equal(t, "tienda@example.com", gotFrom)
	assert.Equal(t, []string{"cliente@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Content-Type: text/html; charset=UTF-8")
	assert.Contains(t, string(gotMsg), "Subject: Pedido confirmado\r\n")

	assert.Error(t, m.Send("", "s", "b"))

	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }
	assert.ErrorContains(t, m.Send("a@b.mx", "s", "b"), "refused")
}

func TestBuildMessage_PlainText(t *testing.T) {
	msg := string(buildMessage("a@b.mx", "c@d.mx", "Hola", "texto"))
	assert.Contains(t, msg, "Content-Type: text/plain; charset=UTF-8")
	assert.Contains(t, msg, "\r\n\r\ntexto\r\n")
}
