package message

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Message is the immutable value exchanged between Writers and Readers. Each
// Reader receives its own copy
type Message struct {
	SenderID  string
	Sequence  int64
	CreatedAt uint64
}

// MaxSenderIDLength is the longest sender identifier a Message will accept
const MaxSenderIDLength = 256

var (
	ErrInvalidMessage = errors.New("invalid message")
)

// New validates its arguments and constructs a Message. The createdAt value
// is a logical timestamp supplied by the publishing registry
func New(senderID string, seq int64, createdAt uint64) (Message, error) {
	if err := Validate(senderID, seq); err != nil {
		return Message{}, err
	}
	return Message{
		SenderID:  senderID,
		Sequence:  seq,
		CreatedAt: createdAt,
	}, nil
}

// Validate checks a sender identifier and sequence number without
// constructing a Message
func Validate(senderID string, seq int64) error {
	if seq <= 0 {
		return fmt.Errorf("%w: sequence must be positive, got %d",
			ErrInvalidMessage, seq,
		)
	}
	return ValidateSender(senderID)
}

// ValidateSender checks a sender identifier on its own
func ValidateSender(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return fmt.Errorf("%w: sender id is required", ErrInvalidMessage)
	case len(id) > MaxSenderIDLength:
		return fmt.Errorf("%w: sender id exceeds %d bytes",
			ErrInvalidMessage, MaxSenderIDLength,
		)
	case !utf8.ValidString(id):
		return fmt.Errorf("%w: sender id is not valid UTF-8", ErrInvalidMessage)
	case strings.IndexFunc(id, unicode.IsControl) >= 0:
		return fmt.Errorf("%w: sender id contains control characters",
			ErrInvalidMessage,
		)
	}
	return nil
}

func (m Message) String() string {
	return m.SenderID + "#" + strconv.FormatInt(m.Sequence, 10)
}
