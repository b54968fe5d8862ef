/*
Package types defines the data exchanged with the processing and generation
service.

# Results

ExtractionResult is the response of the intake call. It normally carries
extracted text for editing; when the service short-circuits it carries a
profile instead, and AsGeneration exposes it as a GenerationResult.

GenerationResult holds the client profile and the forms built from it. Forms
and answers keep the order in which the service sent them.

# Profile

The profile shape is owned by the service. It is kept as a Value tree that
remembers object key order, so the display can dump it exactly as received.

# Errors

ServiceError is the only error variant surfaced by the client: a non-2xx
response carries its body text verbatim, a transport failure carries the
transport error text with Status 0.
*/
package types
