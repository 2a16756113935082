package domain

import "fmt"

// Channel is the sales context a cart belongs to. It decides catalog visibility and
// which promotions apply.
type Channel string

const (
	ChannelB2C Channel = "b2c"
	ChannelB2B Channel = "b2b"
)

var Channels = []Channel{ChannelB2C, ChannelB2B}

func ParseChannel(s string) (Channel, error) {
	ch := Channel(s)
	if !ch.Valid() {
		return "", fmt.Errorf("unknown channel=%q", s)
	}
	return ch, nil
}

func (ch Channel) Valid() bool {
	return ch == ChannelB2C || ch == ChannelB2B
}

func (ch Channel) IsWholesale() bool {
	return ch == ChannelB2B
}

func (ch Channel) String() string {
	return string(ch)
}

// ChannelOf reports the only channel a product flagged isB2B may be sold in.
func ChannelOf(isB2B bool) Channel {
	if isB2B {
		return ChannelB2B
	}
	return ChannelB2C
}
