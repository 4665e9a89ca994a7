package json

import (
	"fmt"

	"github.com/fwojciec/chatstream"
)

// messageDTO is the JSON representation of a Message.
type messageDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func marshalMessage(msg chatstream.Message) (messageDTO, error) {
	if err := chatstream.ValidateMessage(msg); err != nil {
		return messageDTO{}, err
	}
	return messageDTO{Role: string(msg.Role), Content: msg.Content}, nil
}

func unmarshalMessage(dto messageDTO) (chatstream.Message, error) {
	msg := chatstream.Message{Role: chatstream.Role(dto.Role), Content: dto.Content}
	if err := chatstream.ValidateMessage(msg); err != nil {
		return chatstream.Message{}, fmt.Errorf("unknown message role: %q", dto.Role)
	}
	return msg, nil
}
