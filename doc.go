// Package boxify rewrites R scripts that rely on library() search order or
// pkg::fn() qualification into scripts whose every external function is
// imported explicitly through a box preamble:
//
//	box::use(box[use])
//	use(dplyr[filter, mutate])
//	use(magrittr[`%>%`])
//
// # Pipeline
//
// Each script goes through four stages:
//
//  1. Extract: scan the text for call sites, pkg::fn qualifications, load
//     directives, an existing preamble and non-standard operators such as
//     %>%. Comments and strings are ignored.
//
//  2. Resolve: decide one owning package per called function. Explicit
//     qualifications win; otherwise the catalog's unique owner is used, and
//     ties go to the first package in load order followed by a fallback tail
//     (base, dplyr, magrittr, tidyr). Unranked ties take the alphabetically
//     first owner and are reported as warnings.
//
//  3. Hook: an optional Risor script may add or remove imports.
//
//  4. Rewrite: strip qualifications, known load directives and any old
//     preamble, then prepend the new preamble after a #! line if present.
//
// # Usage
//
//	cat, err := boxify.LoadCatalog(ctx, "all_names.csv")
//	if err != nil { ... }
//	e, err := boxify.New(cat, boxify.WithReporter(rep))
//	if err != nil { ... }
//	out, err := e.RewriteFile(ctx, "analysis.R")
//	fmt.Print(out.Text)
//
// Rewriting is idempotent: feeding the output back in yields the same text.
package boxify
