// Package cloud implements the resource-controller and metric-source
// contracts on top of the AWS SDK.
package cloud

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"example.com/presence/internal/monitor"
)

// EC2API is the slice of the EC2 client the controller needs.
type EC2API interface {
	DescribeInstanceStatus(ctx context.Context, params *ec2.DescribeInstanceStatusInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstanceStatusOutput, error)
	StartInstances(ctx context.Context, params *ec2.StartInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error)
	StopInstances(ctx context.Context, params *ec2.StopInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error)
}

// EC2Controller manages one EC2 instance. Start and Stop rely on the EC2
// API's own idempotency: stopping a stopped instance succeeds.
type EC2Controller struct {
	client EC2API
}

// NewEC2Controller constructs an EC2Controller.
func NewEC2Controller(client EC2API) *EC2Controller {
	return &EC2Controller{client: client}
}

// Start starts the instance.
func (c *EC2Controller) Start(ctx context.Context, resourceID string) error {
	_, err := c.client.StartInstances(ctx, &ec2.StartInstancesInput{
		InstanceIds: []string{resourceID},
	})
	return err
}

// Stop stops the instance.
func (c *EC2Controller) Stop(ctx context.Context, resourceID string) error {
	_, err := c.client.StopInstances(ctx, &ec2.StopInstancesInput{
		InstanceIds: []string{resourceID},
	})
	return err
}

// DescribeState reports the instance's lifecycle state. An absent status
// entry maps to unknown rather than an error.
func (c *EC2Controller) DescribeState(ctx context.Context, resourceID string) (monitor.ResourceState, error) {
	out, err := c.client.DescribeInstanceStatus(ctx, &ec2.DescribeInstanceStatusInput{
		InstanceIds:         []string{resourceID},
		IncludeAllInstances: aws.Bool(true),
	})
	if err != nil {
		return monitor.StateUnknown, err
	}
	if len(out.InstanceStatuses) == 0 || out.InstanceStatuses[0].InstanceState == nil {
		return monitor.StateUnknown, nil
	}

	switch out.InstanceStatuses[0].InstanceState.Name {
	case ec2types.InstanceStateNameRunning:
		return monitor.StateRunning, nil
	case ec2types.InstanceStateNameStopped, ec2types.InstanceStateNameStopping:
		return monitor.StateStopped, nil
	default:
		return monitor.StateUnknown, nil
	}
}
