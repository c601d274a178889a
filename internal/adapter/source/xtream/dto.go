package xtream

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Xtream panels disagree on whether numeric fields are JSON numbers or
// strings, and send null, "" or false for missing values. The flex types
// accept all of those.

// flexString decodes a string, number, bool or null into a string
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("false")):
		*s = ""
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
	default:
		*s = flexString(data)
	}
	return nil
}

// flexInt decodes a number or numeric string; anything else becomes 0
type flexInt int64

func (n *flexInt) UnmarshalJSON(data []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(s)), 10, 64)
	if err != nil {
		if f, ferr := strconv.ParseFloat(strings.TrimSpace(string(s)), 64); ferr == nil {
			v = int64(f)
		}
	}
	*n = flexInt(v)
	return nil
}

// flexFloat decodes a number or numeric string; Valid is false when absent or unparsable
type flexFloat struct {
	Value float64
	Valid bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(s)), 64)
	*f = flexFloat{Value: v, Valid: err == nil}
	return nil
}

// flexBool decodes true/false, 0/1 and "0"/"1"
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(string(s))) {
	case "1", "true", "yes":
		*b = true
	default:
		*b = false
	}
	return nil
}

// CategoryDTO is one entry of get_vod_categories
type CategoryDTO struct {
	CategoryID   flexString `json:"category_id"`
	CategoryName flexString `json:"category_name"`
	ParentID     flexInt    `json:"parent_id"`
}

// StreamDTO is one entry of get_vod_streams
type StreamDTO struct {
	Num                flexInt    `json:"num"`
	Name               flexString `json:"name"`
	StreamType         flexString `json:"stream_type"`
	StreamID           flexInt    `json:"stream_id"`
	StreamIcon         flexString `json:"stream_icon"`
	Rating             flexString `json:"rating"`
	Rating5Based       flexFloat  `json:"rating_5based"`
	TMDB               flexString `json:"tmdb"`
	Added              flexString `json:"added"`
	IsAdult            flexBool   `json:"is_adult"`
	CategoryID         flexString `json:"category_id"`
	ContainerExtension flexString `json:"container_extension"`
	CustomSID          flexString `json:"custom_sid"`
	DirectSource       flexString `json:"direct_source"`
}

// UserInfo is the account block returned by an action-less player_api call
type UserInfo struct {
	Username       flexString `json:"username"`
	Auth           flexInt    `json:"auth"`
	Status         flexString `json:"status"`
	ExpDate        flexString `json:"exp_date"`
	MaxConnections flexString `json:"max_connections"`
}

// ServerInfo describes the panel serving the account
type ServerInfo struct {
	URL            flexString `json:"url"`
	Port           flexString `json:"port"`
	ServerProtocol flexString `json:"server_protocol"`
	Timezone       flexString `json:"timezone"`
}

// AccountResponse is the response of an action-less player_api call.
// Some panels also return it, with auth=0, in place of a list when the
// credentials are wrong.
type AccountResponse struct {
	UserInfo   *UserInfo   `json:"user_info"`
	ServerInfo *ServerInfo `json:"server_info"`
}
