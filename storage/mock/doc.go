// Package mock provides an in-memory vector store for testing.
package mock
