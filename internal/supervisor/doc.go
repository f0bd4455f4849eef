// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

/*
Package supervisor builds the suture/v4 supervision tree for the process.

The tree has a root plus two child supervisors: the worker layer (job
manager, cache refresh scheduler) and the API layer (HTTP server).
Supervisor events are logged through sutureslog into the global zerolog
logger via logging.NewSlogLogger.

Services are anything satisfying suture.Service; the services subpackage
provides wrappers for components that do not implement it directly.
*/
package supervisor
