// Package domain contains the core business entities, value objects, and
// domain logic of the application: users, decks, cards, per-user review state,
// deck assignments and shares, and the signals used to rank decks. It is
// independent of any specific infrastructure or delivery mechanism.
package domain
