package exception

import "errors"

// ErrRecordNotFound custom database error for failure to find record
var ErrRecordNotFound = errors.New("record not found")

// ErrScanInProgress returned when a scan is requested while one is running
var ErrScanInProgress = errors.New("scan already in progress")

// ErrTargetOffline returned when a target's hardware address cannot be resolved
var ErrTargetOffline = errors.New("target offline or unresolvable")

// ErrLinkUnavailable returned when raw link access cannot be established
var ErrLinkUnavailable = errors.New("link-layer access unavailable")

// ErrProtectedTarget returned when asked to isolate this host or the gateway
var ErrProtectedTarget = errors.New("target is protected")

// ErrInvalidAddress returned for malformed ip or hardware addresses
var ErrInvalidAddress = errors.New("invalid address")

// ErrNotEnoughSamples returned when training data is too small
var ErrNotEnoughSamples = errors.New("not enough training samples")
