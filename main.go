package main

import (
	"github.com/sirupsen/logrus"

	"github.com/rag-nar1/DiskFilters/filter/bloom"
)

func main() {
	log := logrus.New()

	bf, err := bloom.New(100, 0.1, "bloom_filter.bin", bloom.WithLogger(log))
	if err != nil {
		log.WithError(err).Fatal("construct filter")
	}
	defer bf.Destroy()

	for _, elem := range []any{1, "abc", "def"} {
		if err := bf.Add(elem); err != nil {
			log.WithError(err).Fatal("add")
		}
	}

	for _, elem := range []any{1, 2, "abc", "def", "ab", "defg"} {
		member, err := bf.Contains(elem)
		if err != nil {
			log.WithError(err).Fatal("check member")
		}
		log.WithFields(logrus.Fields{"elem": elem, "member": member}).Info("checked")
	}
}
