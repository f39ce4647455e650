package config

type Kafka struct {
	Addresses []string `env:"KAFKA_ADDRESSES" envDefault:"localhost:9092" envSeparator:","`
	Group     string   `env:"KAFKA_GROUP" envDefault:"inventory-tracker"`
}
