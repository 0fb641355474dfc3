package dataset

import "fmt"

// Preprocess converts the raw LIAR training file into the processed `text,label` CSV
func Preprocess(trainFile, processedFile string) (Stats, error) {
	records, err := ReadLIAR(trainFile)
	if err != nil {
		return Stats{}, fmt.Errorf("read raw dataset: %w", err)
	}

	statements := ToStatements(records)
	if err := WriteProcessed(processedFile, statements); err != nil {
		return Stats{}, fmt.Errorf("write processed dataset: %w", err)
	}

	return ComputeStats(statements), nil
}
