package repository

import (
	"askdocs/internal/domain"

	"github.com/pgvector/pgvector-go"
)

// Text[] columns carry the raw label strings; the typed vocabularies live
// in the domain layer, so conversion happens at this boundary.

func rolesToStrings(roles []domain.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

func topicsToStrings(topics []domain.Topic) []string {
	out := make([]string, len(topics))
	for i, t := range topics {
		out[i] = string(t)
	}
	return out
}

func stringsToRoles(values []string) []domain.Role {
	if len(values) == 0 {
		return nil
	}
	out := make([]domain.Role, len(values))
	for i, v := range values {
		out[i] = domain.Role(v)
	}
	return out
}

func stringsToTopics(values []string) []domain.Topic {
	if len(values) == 0 {
		return nil
	}
	out := make([]domain.Topic, len(values))
	for i, v := range values {
		out[i] = domain.Topic(v)
	}
	return out
}

func vectorParam(values []float32) pgvector.Vector {
	return pgvector.NewVector(values)
}
