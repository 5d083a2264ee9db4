package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/K0NGR3SS/triagekit/internal/models"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
)

// DefaultTimeout bounds the metadata lookup. IMDS is link-local, so anything
// slower means the host is not on EC2.
const DefaultTimeout = 2 * time.Second

// IdentityAPI is the subset of the IMDS client used here.
type IdentityAPI interface {
	GetInstanceIdentityDocument(ctx context.Context, params *imds.GetInstanceIdentityDocumentInput, optFns ...func(*imds.Options)) (*imds.GetInstanceIdentityDocumentOutput, error)
}

type Client struct {
	IMDS    IdentityAPI
	Timeout time.Duration
}

func NewClient(ctx context.Context) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return &Client{
		IMDS:    imds.NewFromConfig(cfg),
		Timeout: DefaultTimeout,
	}, nil
}

// InstanceIdentity reads the EC2 instance identity document from the local
// metadata service.
func (c *Client) InstanceIdentity(ctx context.Context) (*models.CloudIdentity, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := c.IMDS.GetInstanceIdentityDocument(ctx, &imds.GetInstanceIdentityDocumentInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to read instance identity document: %w", err)
	}

	doc := out.InstanceIdentityDocument
	if doc.InstanceID == "" {
		return nil, fmt.Errorf("instance identity document has no instance id")
	}

	return &models.CloudIdentity{
		Provider:         "aws",
		InstanceID:       doc.InstanceID,
		InstanceType:     doc.InstanceType,
		Region:           doc.Region,
		AvailabilityZone: doc.AvailabilityZone,
		AccountID:        doc.AccountID,
		ImageID:          doc.ImageID,
		PrivateIP:        doc.PrivateIP,
	}, nil
}
