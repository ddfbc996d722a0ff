// Package pipeline turns raw documents into stored reports.
//
// An Ingestor handles one document: assemble text, filter, de-duplicate,
// classify, resolve the location, geocode, store and publish. Every
// document ends in exactly one Outcome and no failure aborts a batch.
// A Harvester drives the Ingestor over ReliefWeb content types.
package pipeline
