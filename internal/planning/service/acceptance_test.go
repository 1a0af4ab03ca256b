package service

import (
	"testing"
	"time"

	"github.com/aumugisha-umu/seido-sub017/internal/planning/repository"

	"github.com/google/uuid"
)

func respAt(role, answer string, at time.Time) repository.SlotResponse {
	return repository.SlotResponse{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Role:      role,
		Response:  answer,
		CreatedAt: at,
	}
}

func TestIsMutuallyAccepted(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name      string
		responses []repository.SlotResponse
		want      bool
	}{
		{
			name: "locataire and prestataire accepted",
			responses: []repository.SlotResponse{
				respAt("locataire", "acceptee", now),
				respAt("prestataire", "acceptee", now),
			},
			want: true,
		},
		{
			name: "only locataire accepted",
			responses: []repository.SlotResponse{
				respAt("locataire", "acceptee", now),
			},
			want: false,
		},
		{
			name: "only prestataire accepted",
			responses: []repository.SlotResponse{
				respAt("prestataire", "acceptee", now),
			},
			want: false,
		},
		{
			name:      "no responses",
			responses: nil,
			want:      false,
		},
		{
			name: "prestataire refused",
			responses: []repository.SlotResponse{
				respAt("locataire", "acceptee", now),
				respAt("prestataire", "refusee", now),
			},
			want: false,
		},
		{
			name: "gestionnaire acceptance does not count as locataire",
			responses: []repository.SlotResponse{
				respAt("gestionnaire", "acceptee", now),
				respAt("prestataire", "acceptee", now),
			},
			want: false,
		},
		{
			name: "several locataires one accepted",
			responses: []repository.SlotResponse{
				respAt("locataire", "refusee", now),
				respAt("locataire", "acceptee", now),
				respAt("prestataire", "acceptee", now),
			},
			want: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsMutuallyAccepted(tc.responses); got != tc.want {
				t.Fatalf("IsMutuallyAccepted() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsMutuallyAccepted_LatestAnswerWins(t *testing.T) {
	now := time.Now()
	locataire := uuid.New()
	prestataire := uuid.New()

	responses := []repository.SlotResponse{
		{ID: uuid.New(), UserID: locataire, Role: "locataire", Response: "acceptee", CreatedAt: now},
		{ID: uuid.New(), UserID: prestataire, Role: "prestataire", Response: "acceptee", CreatedAt: now},
		{ID: uuid.New(), UserID: locataire, Role: "locataire", Response: "refusee", CreatedAt: now.Add(time.Minute)},
	}

	if IsMutuallyAccepted(responses) {
		t.Fatal("a later refusal must supersede the earlier acceptance")
	}
}
