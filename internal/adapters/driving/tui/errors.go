package tui

import "errors"

// ErrMissingClusteringService is returned when the clustering service is not provided.
var ErrMissingClusteringService = errors.New("tui: clustering service is required")

// ErrMissingLibraryService is returned when the library service is not provided.
var ErrMissingLibraryService = errors.New("tui: library service is required")

// ErrMissingSessionService is returned when the session service is not provided.
var ErrMissingSessionService = errors.New("tui: session service is required")

// ErrNothingToOpen is returned when neither a similarity file nor a saved
// clustering was given.
var ErrNothingToOpen = errors.New("tui: no similarity file or clustering to open")
