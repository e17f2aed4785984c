package domain

import (
	"errors"
	"fmt"
)

// --- CATÉGORIES D'ERREURS ---
// Les adapters primaires traduisent ces catégories (HTTP, gRPC...).
// Les erreurs précises ci-dessous les enveloppent via %w.
var (
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// --- ERREURS DU DOMAINE ---
var (
	ErrUserNotFound = fmt.Errorf("%w: user not found", ErrNotFound)

	// NotFound couvre aussi "pas autorisé" et "déjà traité" : on ne révèle pas l'existence de la ligne.
	ErrConnectionNotFound   = fmt.Errorf("%w: connection not found or already processed", ErrNotFound)
	ErrNoPendingRequests    = fmt.Errorf("%w: no unread requests found", ErrNotFound)
	ErrConnectionNotCreated = fmt.Errorf("%w: connection request already exists or could not be created", ErrBadRequest)
	ErrSelfConnection       = fmt.Errorf("%w: cannot send a connection request to yourself", ErrBadRequest)
	ErrCorruptConnection    = errors.New("connection row is both pending and accepted")

	ErrPersonalityTypeNotSet  = fmt.Errorf("%w: user's personality type has not been set", ErrBadRequest)
	ErrInvalidPersonalityType = fmt.Errorf("%w: invalid personality type", ErrBadRequest)
	ErrLocationIncomplete     = fmt.Errorf("%w: user location data is incomplete", ErrBadRequest)

	ErrEmptyMessage    = fmt.Errorf("%w: message cannot be empty", ErrBadRequest)
	ErrMessageNotFound = fmt.Errorf("%w: message not found", ErrNotFound)
	ErrNotConnected    = fmt.Errorf("%w: you can only send messages to connected users", ErrForbidden)
)
