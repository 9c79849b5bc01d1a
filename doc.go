/*
Package artifactreplication replicates build artifacts from a source bucket
into a registry-managed set of destination buckets.

Two entry points share one destination registry:
  - Register applies Create, Update and Delete lifecycle events to the registry
    with existence-guarded writes. It always answers with a SUCCESS or FAILED
    result and never returns an error.
  - Replicate takes a storage change notification, reads the current
    destinations and copies every changed object to every destination on a
    bounded worker pool, reporting every copy outcome.

The registry lives in DynamoDB (single table, destinations listed through the
gsi1 index) or, for local runs, in an embedded Badger database.

Basic Usage:

	cfg, err := config.Load("replicator.yaml")
	if err != nil {
	    return err
	}
	svc, err := artifactreplication.New(ctx, cfg)
	if err != nil {
	    return err
	}
	defer svc.Close()

	result := svc.Register(ctx, storagemodels.LifecycleEvent{
	    RequestType: storagemodels.RequestCreate,
	    ResourceProperties: storagemodels.DestinationProperties{
	        BucketArn: "arn:aws:s3:::replica-bucket",
	        AccountID: "111111111111",
	        Region:    "us-east-1",
	    },
	})

	report, err := svc.Replicate(ctx, batch)
*/
package artifactreplication
