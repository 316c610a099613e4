package cloud

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"example.com/presence/internal/monitor"
)

// CloudWatchAPI is the slice of the CloudWatch client the source needs.
type CloudWatchAPI interface {
	GetMetricData(ctx context.Context, params *cloudwatch.GetMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricDataOutput, error)
}

// CloudWatchSource fetches per-instance metric series from CloudWatch.
type CloudWatchSource struct {
	client    CloudWatchAPI
	namespace string
	now       func() time.Time
}

// NewCloudWatchSource constructs a source for the given metric namespace.
func NewCloudWatchSource(client CloudWatchAPI, namespace string) *CloudWatchSource {
	return &CloudWatchSource{client: client, namespace: namespace, now: time.Now}
}

// FetchSeries returns period-averaged samples for the trailing window, oldest
// first. CloudWatch omits datapoints for gaps, so the series may be sparse or
// empty; that is the caller's problem to interpret, not an error here.
func (s *CloudWatchSource) FetchSeries(ctx context.Context, resourceID, metricName string, window, period time.Duration) ([]monitor.Sample, error) {
	end := s.now().UTC()
	start := end.Add(-window)

	out, err := s.client.GetMetricData(ctx, &cloudwatch.GetMetricDataInput{
		StartTime: aws.Time(start),
		EndTime:   aws.Time(end),
		ScanBy:    cwtypes.ScanByTimestampAscending,
		MetricDataQueries: []cwtypes.MetricDataQuery{
			{
				Id: aws.String("m1"),
				MetricStat: &cwtypes.MetricStat{
					Metric: &cwtypes.Metric{
						Namespace:  aws.String(s.namespace),
						MetricName: aws.String(metricName),
						Dimensions: []cwtypes.Dimension{
							{
								Name:  aws.String("InstanceId"),
								Value: aws.String(resourceID),
							},
						},
					},
					Period: aws.Int32(int32(period / time.Second)),
					Stat:   aws.String("Average"),
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(out.MetricDataResults) == 0 {
		return nil, nil
	}

	result := out.MetricDataResults[0]
	samples := make([]monitor.Sample, 0, len(result.Values))
	for i, value := range result.Values {
		sample := monitor.Sample{Value: value}
		if i < len(result.Timestamps) {
			sample.Timestamp = result.Timestamps[i]
		}
		samples = append(samples, sample)
	}
	return samples, nil
}
