// Package transfer implements the ownership boundary applied to every value
// entering a queue.
//
// A producer may hand the queue values that still point at objects it owns:
// extensions wrapped with message.Ext or message.Reference, or Maps it keeps
// mutating. Copier rebuilds the tree so the result owns all of its nodes.
// Every extension becomes a clone, so the same object pushed twice, or placed
// under two keys, yields distinct stored objects. Maps become fresh maps and
// primitives are kept as they are.
//
// Once Copy returns, the producer may mutate or drop anything it passed in
// without affecting the result.
//
// Copy is all-or-nothing. On error the result is discarded and no partial
// tree escapes:
//
//	res, err := transfer.NewCopier(registry).Copy(v)
//	if err != nil {
//	    return err // errors.ErrCopyFailed (fatal) or an invalid input
//	}
//	store(res.Value)
package transfer
