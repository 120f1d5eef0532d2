// Package nlp turns a free-text sentence into an event.Draft with a language
// model.
//
// The Extractor builds a deterministic instruction that embeds the reference
// date and the JSON output contract, asks the model at temperature zero and
// parses the first JSON object found in the reply. The extractor never fills
// in missing times; a reply without start or end is returned as-is and left
// to event.Draft validation.
package nlp
