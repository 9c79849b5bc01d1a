/*
Package config loads the replication service configuration.

Values are layered, later sources winning:

 1. built-in defaults (table CrossAccountBuildReplication, index gsi1, S3 region us-east-1)
 2. an optional YAML file
 3. a .env file in the working directory
 4. environment variables

Recognized environment variables: AWS_ACCESS_KEY, AWS_SECRET_KEY, AWS_REGION,
AWS_DDB_TABLE, REPLICATION_INDEX_NAME, REGISTRY_BACKEND, BADGER_PATH,
REPLICATION_S3_REGION, REPLICATION_ROLE_ARN, REPLICATION_MAX_CONCURRENCY,
LOG_LEVEL and LOG_FORMAT.
*/
package config
