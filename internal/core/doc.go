// Package core validates student CSV uploads and relays them to a sink.
//
// Nothing here depends on HTTP. A transport decodes the request into an
// [Upload] and calls [Service.Process]; the result is either nil (every
// row reached the sink) or a [*Error] whose text is the caller-facing message.
//
// # Pipeline
//
// Each upload runs in its own [Pipeline]:
//
//	AwaitingInput -> HeaderPending -> Ingesting -> Accepted | Rejected
//
//   - The header must equal the student schema exactly ([CheckHeader]).
//   - Each data row passes the [RowLimiter] and then [ValidateRow]. The
//     first failure rejects the upload and stops reading input.
//   - A fully validated batch goes to the [Dispatcher], which sends
//     records one at a time and stops at the first sink failure.
//   - The [OutcomeNotifier] mails one summary per forwarded batch.
//     Its failures are logged, never returned.
//
// # Row limit
//
// [LimitInclusive] accepts exactly N rows. [LimitExclusive] accepts N-1,
// the boundary older deployments enforced, and reports N-1 in its message.
//
// # Concurrency
//
// Uploads share only read-only [Options] and their collaborators. The
// [UploadLimiter] caps how many run at once.
package core
