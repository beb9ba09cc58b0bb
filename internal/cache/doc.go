// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package cache provides the time-bounded file cache that sits between the
// API client and the network. Entries are JSON envelopes stamped with their
// fetch time; a fresh entry satisfies a read, anything else delegates to the
// caller's fetch function.
package cache
