// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// RepoKind is one of the three repository families hosted on the hub.
type RepoKind string

// Repository kinds.
const (
	KindModel   RepoKind = "model"
	KindDataset RepoKind = "dataset"
	KindSpace   RepoKind = "space"
)

// AllKinds lists every kind in scan order.
var AllKinds = []RepoKind{KindModel, KindDataset, KindSpace}

// Plural returns the API path segment for the kind ("models", ...).
func (k RepoKind) Plural() string {
	return string(k) + "s"
}

// ResolvePrefix returns the URL prefix used for file resolution and links.
func (k RepoKind) ResolvePrefix() string {
	switch k {
	case KindDataset:
		return "datasets/"
	case KindSpace:
		return "spaces/"
	default:
		return ""
	}
}

// ParseRepoKind accepts both singular and plural spellings.
func ParseRepoKind(s string) (RepoKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "model", "models":
		return KindModel, nil
	case "dataset", "datasets":
		return KindDataset, nil
	case "space", "spaces":
		return KindSpace, nil
	}
	return "", fmt.Errorf("unknown repo kind %q", s)
}

// SplitRepoID splits "namespace/name". ok is false for any other shape.
func SplitRepoID(repoID string) (namespace, name string, ok bool) {
	parts := strings.Split(repoID, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// RepoOwner returns the namespace part of a repository id.
func RepoOwner(repoID string) string {
	owner, _, _ := strings.Cut(repoID, "/")
	return owner
}
