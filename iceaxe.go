/*
Copyright 2024 piercefreeman

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package iceaxe hydrates raw query-result rows into typed model values.
//
// Models are plain structs registered with Register. A query's selection
// plan classifies into four target kinds (whole table rows, single columns,
// computed function outputs and aliased values); Hydrate resolves the plan
// once, precomputes per-target field metadata, and converts every row into
// its typed output in selection order. Conn adds the session layer that runs
// plans against database/sql and feeds the results through the engine.
package iceaxe
