// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

// Package services provides suture.Service adapters: HTTPServerService
// for the blocking net/http server, and WorkerService for components
// whose Serve(ctx) loops already fit suture's contract but need a stable
// name in supervision logs.
package services
