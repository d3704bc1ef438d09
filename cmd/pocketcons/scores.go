package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/inodb/pocketcons/internal/analysis"
	"github.com/inodb/pocketcons/internal/scoresource"
)

// addScoreFlags registers the flags selecting where score files live.
func addScoreFlags(fs *pflag.FlagSet) {
	fs.String("scores-dir", "", "Directory of score files (default: the dataset directory)")
	fs.String("s3-bucket", "", "Read score files from this S3 bucket instead of a directory")
	fs.String("s3-prefix", "", "Key prefix of score files in the bucket")
	fs.String("s3-region", "", "S3 region (default us-east-1)")
	fs.String("s3-endpoint", "", "Custom S3 endpoint, e.g. a MinIO server")
	fs.Bool("s3-path-style", false, "Use path-style S3 addressing")
}

// bindFlags binds flags to viper keys so that config file and environment
// values apply when a flag is not given.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for key, name := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("binding flag --%s: %w", name, err)
		}
	}
	return nil
}

var scoreKeys = map[string]string{
	"scores.dir":           "scores-dir",
	"scores.s3.bucket":     "s3-bucket",
	"scores.s3.prefix":     "s3-prefix",
	"scores.s3.region":     "s3-region",
	"scores.s3.endpoint":   "s3-endpoint",
	"scores.s3.path_style": "s3-path-style",
}

// scoreStore is the configured location of score files: a local
// directory or an S3 bucket.
type scoreStore struct {
	dir    string
	bucket *scoresource.Bucket
}

// openScoreStore builds the score store from configuration. dir is used
// when neither scores.dir nor an S3 bucket is configured.
func openScoreStore(ctx context.Context, dir string) (*scoreStore, error) {
	if bucket := viper.GetString("scores.s3.bucket"); bucket != "" {
		b, err := scoresource.NewBucket(ctx, scoresource.S3Config{
			Bucket:          bucket,
			Prefix:          viper.GetString("scores.s3.prefix"),
			Region:          viper.GetString("scores.s3.region"),
			Endpoint:        viper.GetString("scores.s3.endpoint"),
			AccessKeyID:     viper.GetString("scores.s3.access_key_id"),
			SecretAccessKey: viper.GetString("scores.s3.secret_access_key"),
			PathStyle:       viper.GetBool("scores.s3.path_style"),
		})
		if err != nil {
			return nil, err
		}
		return &scoreStore{bucket: b}, nil
	}
	if d := viper.GetString("scores.dir"); d != "" {
		dir = d
	}
	if dir == "" {
		return nil, usageError{fmt.Errorf("no score location: set --scores-dir or --s3-bucket")}
	}
	return &scoreStore{dir: dir}, nil
}

func (s *scoreStore) String() string {
	if s.bucket != nil {
		return "s3://" + viper.GetString("scores.s3.bucket") + "/" + viper.GetString("scores.s3.prefix")
	}
	return s.dir
}

// locator resolves score files by naming convention.
func (s *scoreStore) locator(naming scoresource.Naming) analysis.Locator {
	if s.bucket != nil {
		return analysis.BucketLocator(s.bucket, naming)
	}
	return analysis.DirLocator(s.dir, naming)
}

// candidates lists every score file of the store.
func (s *scoreStore) candidates(ctx context.Context) ([]scoresource.Source, error) {
	if s.bucket != nil {
		return s.bucket.List(ctx)
	}
	return scoresource.ListDir(s.dir)
}
