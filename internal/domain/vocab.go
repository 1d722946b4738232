package domain

import "strings"

// Role is an enumerated audience tag describing the intended reader of a
// segment, and the role stored on a user profile.
type Role string

const (
	RoleDeveloper  Role = "developer"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
	RoleSupport    Role = "support"
	RoleCustomer   Role = "customer"
	RoleResearcher Role = "researcher"
	// RoleGeneral is the sentinel audience assigned when classification
	// fails or yields nothing.
	RoleGeneral Role = "general"
)

// Topic is an enumerated subject-matter tag.
type Topic string

const (
	TopicAI        Topic = "AI"
	TopicML        Topic = "ML"
	TopicPython    Topic = "Python"
	TopicFinance   Topic = "Finance"
	TopicTechnical Topic = "Technical"
	TopicSecurity  Topic = "Security"
	TopicDevOps    Topic = "DevOps"
)

// MaxTopicsPerSegment bounds how many topics a single segment may carry.
const MaxTopicsPerSegment = 3

var knownRoles = []Role{
	RoleDeveloper, RoleManager, RoleAdmin, RoleSupport,
	RoleCustomer, RoleResearcher, RoleGeneral,
}

var knownTopics = []Topic{
	TopicAI, TopicML, TopicPython, TopicFinance,
	TopicTechnical, TopicSecurity, TopicDevOps,
}

// KnownRoles returns the fixed role vocabulary.
func KnownRoles() []Role {
	out := make([]Role, len(knownRoles))
	copy(out, knownRoles)
	return out
}

// KnownTopics returns the fixed topic vocabulary.
func KnownTopics() []Topic {
	out := make([]Topic, len(knownTopics))
	copy(out, knownTopics)
	return out
}

// ParseRole matches s against the role vocabulary, case-insensitively.
func ParseRole(s string) (Role, bool) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, r := range knownRoles {
		if needle == string(r) {
			return r, true
		}
	}
	return "", false
}

// ParseTopic matches s against the topic vocabulary, case-insensitively,
// returning the canonical spelling.
func ParseTopic(s string) (Topic, bool) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, t := range knownTopics {
		if needle == strings.ToLower(string(t)) {
			return t, true
		}
	}
	return "", false
}
