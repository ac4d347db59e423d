package journal

import "errors"

// Multi writes every record to each journal in order. An error in one
// journal does not stop the others.
type Multi []Journal

func (m Multi) Append(r Record) error {
	var errs []error
	for _, j := range m {
		if err := j.Append(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, j := range m {
		if err := j.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
