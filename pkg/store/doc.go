// Package store persists accepted form submissions.
//
// A Submission is the snapshot a form hands to its submit callback,
// stamped with an ID and a timestamp. The Store interface has three
// backends:
//
//   - MemoryStore: bounded per-form ring, the development default.
//   - RedisStore: one JSON list per form (LPUSH + LTRIM), configured
//     directly or from the environment via NewRedisStoreFromEnv.
//   - S3Store: one JSON object per submission, behind the s3store
//     build tag.
//
// Typical wiring from a submit handler:
//
//	onSubmit := f.HandleSubmit(func(v form.Values) {
//	    sub := store.NewSubmission("signup", v)
//	    if err := st.Save(ctx, sub); err != nil {
//	        logger.Error("save submission", "error", err)
//	    }
//	})
package store
