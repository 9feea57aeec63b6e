// Package event classifies the CLI's line protocol into a closed set of
// variants.
//
// One decoded stdout line becomes one RawEvent. The union is closed with
// an explicit Unrecognized arm so that new line shapes from a newer CLI
// degrade to a counted, logged skip instead of a silent misread. The
// first result line is terminal by contract; the read loop stops there
// and later lines are never classified.
package event
