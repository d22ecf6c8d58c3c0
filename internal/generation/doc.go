// Package generation contains the flashcard generation core: the model
// client boundary, prompt construction, tolerant parsing of model output,
// the concept enumerator, the card synthesizer, and the iteration
// controller that loops concept batches until coverage is sufficient or a
// ceiling is hit.
//
// The package absorbs all model-output irregularities internally: extra
// prose around JSON, markdown code fences, malformed JSON, and unexpected
// shapes all degrade to dropped units or forced termination, never to an
// error surfaced past the generation boundary.
package generation
