package configuration

import "github.com/adampresley/configinator"

type Config struct {
	AdminEmail           string `flag:"adminemail" env:"ADMIN_EMAIL" default:"" description:"Email address notified when a gallery sync fails"`
	AwsEndpointUrl       string `flag:"awsep" env:"AWS_ENDPOINT_URL" default:"http://localhost:4566" description:"AWS endpoint URL"`
	AwsRegion            string `flag:"awsregion" env:"AWS_REGION" default:"us-central-1" description:"AWS region"`
	AwsAccessKeyId       string `flag:"awsaccesskeyid" env:"AWS_ACCESS_KEY_ID" default:"" description:"AWS access key ID"`
	AwsSecretAccessKey   string `flag:"awssecretaccesskey" env:"AWS_SECRET_ACCESS_KEY" default:"" description:"AWS secret access key"`
	AwsBucket            string `flag:"awsbucket" env:"AWS_BUCKET" default:"brightstepsngo.org" description:"S3 bucket for the cover image cache"`
	CoverCacheFolder     string `flag:"ccf" env:"COVER_CACHE_FOLDER" default:"gallery-covers" description:"S3 folder for cached album covers"`
	DSN                  string `flag:"dsn" env:"DSN" default:"file:./data/brightstepsngo.db" description:"Data source name"`
	EmailApiKey          string `flag:"emailapikey" env:"EMAIL_API_KEY" default:"" description:"API key for sending emails"`
	FlickrApiKey         string `flag:"flickrapikey" env:"FLICKR_API_KEY" default:"" description:"Flickr API key"`
	FlickrOwnerIds       string `flag:"flickrowners" env:"FLICKR_OWNER_IDS" default:"" description:"Comma separated Flickr account IDs whose albums are synced"`
	GalleryPageSize      int    `flag:"gps" env:"GALLERY_PAGE_SIZE" default:"12" description:"Albums per page in gallery listings"`
	Host                 string `flag:"host" env:"HOST" default:"localhost:8080" description:"The address and port to bind the HTTP server to"`
	LogLevel             string `flag:"loglevel" env:"LOG_LEVEL" default:"debug" description:"The log level to use. Valid values are 'debug', 'info', 'warn', and 'error'"`
	MaxCoverCacheWorkers int    `flag:"mccw" env:"MAX_COVER_CACHE_WORKERS" default:"10" description:"Maximum number of concurrent cover cache workers"`
	StaleSyncMinutes     int    `flag:"stalesync" env:"STALE_SYNC_MINUTES" default:"30" description:"Minutes before a running sync log entry is swept to failed"`
	SyncIntervalMinutes  int    `flag:"syncinterval" env:"SYNC_INTERVAL_MINUTES" default:"360" description:"Minutes between scheduled gallery syncs. 0 disables the scheduler"`
}

func LoadConfig() Config {
	config := Config{}
	configinator.Behold(&config)
	return config
}
