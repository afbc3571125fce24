package webapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"hauntops-backend/services/hauntops"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}

func errorJSON(w http.ResponseWriter, err error, status int) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type userResponse struct {
	ID          int64   `json:"id"`
	Email       string  `json:"email"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	DateOfBirth string  `json:"dateOfBirth"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	Country     string  `json:"country"`
	Phone1      string  `json:"phone1"`
	TshirtSize  string  `json:"tshirtSize"`
	PointTotal  float64 `json:"pointTotal"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.qry.ListUsers(r.Context())
	if err != nil {
		errorJSON(w, err, http.StatusInternalServerError)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse{
			ID:          u.ID,
			Email:       u.Email,
			FirstName:   u.FirstName,
			LastName:    u.LastName,
			DateOfBirth: u.DateOfBirth,
			City:        u.City,
			State:       u.State,
			Country:     u.Country,
			Phone1:      u.Phone1,
			TshirtSize:  u.TshirtSize,
			PointTotal:  u.PointTotal,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type eventResponse struct {
	ID     int64  `json:"id"`
	Date   string `json:"date"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.qry.ListEvents(r.Context())
	if err != nil {
		errorJSON(w, err, http.StatusInternalServerError)
		return
	}
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse{ID: e.ID, Date: e.EventDate, Name: e.EventName, Status: e.EventStatus})
	}
	writeJSON(w, http.StatusOK, out)
}

type groupResponse struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Points  float64  `json:"points"`
	Members []string `json:"members"`
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.qry.ListGroups(r.Context())
	if err != nil {
		errorJSON(w, err, http.StatusInternalServerError)
		return
	}
	out := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		members, err := s.qry.ListGroupMemberEmails(r.Context(), g.ID)
		if err != nil {
			errorJSON(w, err, http.StatusInternalServerError)
			return
		}
		if members == nil {
			members = []string{}
		}
		out = append(out, groupResponse{ID: g.ID, Name: g.GroupName, Points: g.GroupPoints, Members: members})
	}
	writeJSON(w, http.StatusOK, out)
}

type ticketSaleResponse struct {
	ID        int64  `json:"id"`
	EventID   int64  `json:"eventId"`
	EventName string `json:"eventName"`
	EventDate string `json:"eventDate"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
	Purchased int64  `json:"purchased"`
	Remaining int64  `json:"remaining"`
}

func formatNullUnix(v sql.NullInt64) string {
	if !v.Valid {
		return ""
	}
	return time.Unix(v.Int64, 0).UTC().Format(time.RFC3339)
}

func (s *Server) handleListTicketSales(w http.ResponseWriter, r *http.Request) {
	sales, err := s.qry.ListTicketSales(r.Context())
	if err != nil {
		errorJSON(w, err, http.StatusInternalServerError)
		return
	}
	out := make([]ticketSaleResponse, 0, len(sales))
	for _, t := range sales {
		out = append(out, ticketSaleResponse{
			ID:        t.ID,
			EventID:   t.EventID,
			EventName: t.EventName,
			EventDate: t.EventDate,
			StartTime: formatNullUnix(t.StartTime),
			EndTime:   formatNullUnix(t.EndTime),
			Purchased: t.TicketsPurchased,
			Remaining: t.TicketsRemaining,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type runResponse struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
}

func (s *Server) handleRunTicketSales(w http.ResponseWriter, r *http.Request) {
	if s.config.NewPortalClient == nil {
		errorJSON(w, errors.New("no ticketing portal configured"), http.StatusServiceUnavailable)
		return
	}
	client, err := s.config.NewPortalClient(r.Context())
	if err != nil {
		errorJSON(w, err, http.StatusBadGateway)
		return
	}
	dryRun := r.URL.Query().Get("dry_run") == "true"
	report, err := s.svc.FetchTicketSales(r.Context(), client, s.config.MaxPages, hauntops.RunOptions{DryRun: dryRun})
	if err != nil {
		errorJSON(w, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, runResponse{
		Processed: report.Processed,
		Created:   report.Created,
		Updated:   report.Updated,
		Skipped:   report.Skipped,
	})
}

func (s *Server) handleRunFetchUsers(w http.ResponseWriter, r *http.Request) {
	if s.config.NewVolunteerClient == nil {
		errorJSON(w, errors.New("no volunteer portal configured"), http.StatusServiceUnavailable)
		return
	}
	client, err := s.config.NewVolunteerClient(r.Context())
	if err != nil {
		errorJSON(w, err, http.StatusBadGateway)
		return
	}
	dryRun := r.URL.Query().Get("dry_run") == "true"
	report, err := s.svc.FetchUsers(r.Context(), client, s.config.Mapping, hauntops.RunOptions{DryRun: dryRun})
	if err != nil {
		errorJSON(w, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, runResponse{
		Processed: report.Processed,
		Created:   report.Created,
		Updated:   report.Updated,
		Skipped:   report.Skipped,
	})
}
