package client

import (
	"encoding/json"
)

// SessionMirror is the client's cached copy of what the server last said
// about the session. It only drives display; the server never reads it.
type SessionMirror struct {
	LoggedIn bool   `json:"logged_in"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
}

func loadMirror(kv Storage) SessionMirror {
	raw, ok := kv.Get(SessionKey)
	if !ok {
		return SessionMirror{}
	}
	var m SessionMirror
	if err := json.Unmarshal(raw, &m); err != nil {
		return SessionMirror{}
	}
	return m
}

func saveMirror(kv Storage, m SessionMirror) error {
	if !m.LoggedIn {
		return kv.Delete(SessionKey)
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return kv.Set(SessionKey, raw)
}
