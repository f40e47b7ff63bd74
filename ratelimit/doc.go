// Copyright 2025 Reelworthy
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ratelimit wraps external calls with minimum inter-call spacing
// and retry with exponential backoff.
//
// Every external service the pipeline talks to (catalog pages, enrichment
// lookups, embeddings, vector store operations) goes through an Executor
// dedicated to that call class. Transient failures are retried; failures
// marked with Permanent propagate immediately. This keeps backoff behavior
// uniform across the pipeline instead of each call site growing its own
// ad-hoc retry loop.
package ratelimit
