// Package reembed provides functionality for reembedding stored entities
// with new or updated embedding models.
//
// This package supports concurrent batch processing of entities, progress
// tracking, retry logic with exponential backoff, and vector normalization
// to ensure compatibility with cosine similarity search.
package reembed
