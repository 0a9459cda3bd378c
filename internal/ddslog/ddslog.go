// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ddslog wraps github.com/luxfi/log the way the teacher wraps
// it for its own engine: a thin adapter giving the core a single
// logging surface, with a no-op fallback when no logger is configured
// (spec.md's ambient logging — the domain's Non-goals exclude the
// logging backend itself, not structured logging of the core's own
// operations).
package ddslog

import (
	"github.com/luxfi/log"
	"go.uber.org/zap"
)

// Logger is the logging surface used throughout the core; it is a
// direct alias of log.Logger so callers needn't import luxfi/log
// themselves, matching the teacher's single-import SDK-surface idiom.
type Logger = log.Logger

// NoOp returns a logger that discards everything, used when a
// participant is created without an explicit logger configured.
func NoOp() Logger { return log.NewNoOpLogger() }

// field helpers mirror the zap.Field vocabulary the wrapped logger
// already speaks, named for the core's own recurring context keys.

func Handle(v int32) zap.Field     { return zap.Int32("handle", v) }
func Domain(v int32) zap.Field     { return zap.Int32("domain_id", v) }
func Topic(v string) zap.Field     { return zap.String("topic", v) }
func TypeName(v string) zap.Field  { return zap.String("type_name", v) }
func SeqNo(v uint64) zap.Field     { return zap.Uint64("seq", v) }
func PolicyID(v uint64) zap.Field  { return zap.Uint64("policy_id", v) }
func ErrField(err error) zap.Field { return zap.Error(err) }
