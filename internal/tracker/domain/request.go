package domain

import (
	"encoding/json"
	"sort"
	"time"
)

// Request is an engineering request (ticket) routed between a requester, an
// owner, and a customer.
type Request struct {
	ID            string `json:"_id"`
	Requester     string `json:"requester"`
	RequesterName string `json:"requestername"`
	Owner         string `json:"owner"`
	OwnerName     string `json:"ownername"`
	Type          string `json:"type"`
	Customer      string `json:"customer"`
	Title         string `json:"title"`
	Text          string `json:"text"`
	Completed     bool   `json:"completed"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`

	// Ticket is a human-facing ticket number. The API is inconsistent about
	// whether it is a string or a number, so it is normalised on decode.
	Ticket string `json:"ticket"`
}

// UnmarshalJSON normalises the ticket field, which the API emits either as a
// string or a bare number depending on how the record was created.
func (r *Request) UnmarshalJSON(data []byte) error {
	type alias Request
	aux := struct {
		*alias
		Ticket json.RawMessage `json:"ticket"`
	}{alias: (*alias)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.Ticket = ""
	if len(aux.Ticket) > 0 {
		var s string
		if err := json.Unmarshal(aux.Ticket, &s); err == nil {
			r.Ticket = s
		} else {
			var n json.Number
			if err := json.Unmarshal(aux.Ticket, &n); err == nil {
				r.Ticket = n.String()
			}
		}
	}
	return nil
}

// Created parses the RFC 3339 creation timestamp, returning the zero time
// when the field is absent or malformed.
func (r Request) Created() time.Time {
	t, err := time.Parse(time.RFC3339, r.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SortRequests orders requests for display: open requests before completed
// ones, newest first within each group.
func SortRequests(reqs []Request) {
	sort.SliceStable(reqs, func(i, j int) bool {
		if reqs[i].Completed != reqs[j].Completed {
			return !reqs[i].Completed
		}
		return reqs[i].Created().After(reqs[j].Created())
	})
}
