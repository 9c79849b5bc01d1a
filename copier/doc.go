/*
Package copier copies a changed source object into one destination bucket.

Object keys arrive from storage notifications in form encoding. DecodeKey
replaces '+' with a space first and then resolves percent escapes, which is
the only order that keeps an encoded plus ("%2B") as a literal plus.

Destinations may be given as S3 bucket ARNs or bare bucket names:

	c := copier.NewFromConfig(awsCfg, copier.WithLogger(logger))
	conf, err := c.Copy(ctx, storagemodels.ReplicationTask{
	    SourceBucket:   "build-artifacts",
	    SourceKey:      "releases/app+v1%2B2.zip",
	    DestinationRef: "arn:aws:s3:::replica-bucket",
	})

Failures are returned as *errors.CopyError and are never retried.
*/
package copier
