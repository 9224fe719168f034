package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chatrelay/backend/internal/models"
)

func TestFormatForTelegram(t *testing.T) {
	tests := []struct {
		name string
		msg  models.Message
		want string
	}{
		{
			name: "text message carries the sender",
			msg:  models.Message{SenderID: "anon-1", Kind: models.KindText, Content: "hello"},
			want: "anon-1: hello",
		},
		{
			name: "join notice is bracketed",
			msg:  models.Message{SenderID: "anon-1", Kind: models.KindJoin, Content: "anon-1 has joined the room"},
			want: "[join] anon-1 has joined the room",
		},
		{
			name: "leave notice is bracketed",
			msg:  models.Message{SenderID: "anon-1", Kind: models.KindLeave, Content: "anon-1 has left the room"},
			want: "[leave] anon-1 has left the room",
		},
		{
			name: "unknown kind is suppressed",
			msg:  models.Message{SenderID: "anon-1", Kind: "typing", Content: "..."},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatForTelegram(tt.msg))
		})
	}
}
