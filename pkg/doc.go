// Package pkg provides the core libraries for pageconv PAGE XML conversion.
//
// # Overview
//
// pageconv converts PAGE XML documents exported from eScriptorium or Kraken
// into the form Transkribus accepts on import. The pkg directory is organized
// into five areas:
//
//  1. [pagexml] - The document transform (namespace rewriting, structural fills)
//  2. [pipeline] - Orchestration (transform + caching + observability)
//  3. [cache] - Result caching (file-based, Redis, null)
//  4. [errors] - Structured error codes shared across the module
//  5. [observability] - Hook points for metrics and tracing
//
// # Architecture
//
// The typical data flow:
//
//	PAGE XML bytes
//	       |
//	pipeline.Runner.Convert (cache lookup by content hash)
//	       |
//	pagexml.Transform (parse, rewrite namespaces, fill structure)
//	       |
//	converted bytes (cached, then returned)
//
// The command-line interface and the HTTP service both sit on top of
// [pipeline]; neither adds conversion behavior of its own.
package pkg
