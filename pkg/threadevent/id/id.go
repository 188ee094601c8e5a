// Package id generates globally unique event identifiers.
package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nats-io/nuid"
)

// Generator produces unique random identifiers.
type Generator interface {
	New() string
}

var (
	// UUID generates random (version 4) UUIDs. It is the default for events.
	UUID Generator = uuidGen{}

	// NUID generates NATS unique identifiers, which are shorter and cheaper
	// to produce than UUIDs.
	NUID Generator = nuidGen{}
)

type uuidGen struct{}

func (uuidGen) New() string {
	return uuid.New().String()
}

type nuidGen struct{}

func (nuidGen) New() string {
	return nuid.Next()
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func() string

// New implements Generator.
func (f GeneratorFunc) New() string {
	return f()
}

// Lookup returns the generator registered under name ("uuid" or "nuid").
// The empty name selects UUID.
func Lookup(name string) (Generator, error) {
	switch strings.ToLower(name) {
	case "", "uuid":
		return UUID, nil
	case "nuid":
		return NUID, nil
	default:
		return nil, fmt.Errorf("unknown id generator: %q", name)
	}
}
